package report

// Schema is the JSON Schema (Draft 2020-12) for the parity JSON
// output. It documents the structure returned by WriteJSON.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/parity/coverage-report.schema.json",
  "title": "Parity Coverage Report",
  "description": "Output schema for parity report --format=json",
  "type": "object",
  "required": ["version", "family", "display_name", "percentage", "totals", "rows"],
  "properties": {
    "version": {
      "type": "string",
      "description": "Tool version"
    },
    "family": {
      "type": "string",
      "enum": ["Chrome", "Edge", "FF", "FF-ESR"],
      "description": "Browser family nickname"
    },
    "display_name": {
      "type": "string"
    },
    "percentage": {
      "type": "integer",
      "minimum": 0,
      "maximum": 100,
      "description": "round(implemented / real * 100); 0 when no real names"
    },
    "totals": { "$ref": "#/$defs/Totals" },
    "rows": {
      "type": "array",
      "items": { "$ref": "#/$defs/Row" }
    }
  },
  "$defs": {
    "Totals": {
      "type": "object",
      "required": ["categories", "real", "implemented", "erroneous"],
      "properties": {
        "categories": { "type": "integer", "minimum": 0 },
        "real": { "type": "integer", "minimum": 0 },
        "implemented": { "type": "integer", "minimum": 0 },
        "erroneous": { "type": "integer", "minimum": 0 }
      }
    },
    "Row": {
      "type": "object",
      "required": ["category", "implemented", "real", "real_names", "missing", "erroneous"],
      "properties": {
        "category": {
          "type": "string",
          "description": "Catalog category name"
        },
        "implemented": {
          "type": "integer",
          "minimum": 0,
          "description": "Real names also simulated"
        },
        "real": {
          "type": "integer",
          "minimum": 0,
          "description": "Number of real names"
        },
        "real_names": {
          "type": "array",
          "items": { "type": "string" }
        },
        "missing": {
          "type": "array",
          "items": { "type": "string" },
          "description": "Real names not simulated"
        },
        "erroneous": {
          "type": "array",
          "items": { "type": "string" },
          "description": "Simulated names the browser does not expose"
        }
      }
    }
  }
}`
