package policy

// ruleSchema validates the normalized rules array before it is installed.
const ruleSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "decision"],
    "additionalProperties": false,
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "decision": {"enum": ["refund", "deny", "escalate"]},
      "confidence": {"type": "number", "minimum": 0, "maximum": 1},
      "reason": {"type": "string"},
      "category": {"type": "string"},
      "conditions": {
        "type": "object",
        "additionalProperties": {
          "anyOf": [
            {"type": ["string", "number", "boolean"]},
            {
              "type": "object",
              "required": ["op", "value"],
              "additionalProperties": false,
              "properties": {
                "op": {"enum": ["eq", "ne", "gt", "gte", "lt", "lte", "in", "contains"]},
                "value": {}
              }
            }
          ]
        }
      }
    }
  }
}`
