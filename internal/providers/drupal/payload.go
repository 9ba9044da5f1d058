package drupal

import "encoding/json"

// Drupal's REST node format wraps every field in an array of value objects.

type FieldValue struct {
	Value any `json:"value"`
}

type TargetID struct {
	TargetID string `json:"target_id"`
}

type BodyValue struct {
	Value  string `json:"value"`
	Format string `json:"format"`
}

// NodePayload is the node-creation body for POST /node?_format=json.
// Fields holds the mapped custom fields (field_email and friends); they
// are flattened next to the fixed fields when the payload is marshaled.
type NodePayload struct {
	Type   []TargetID
	Title  []FieldValue
	Status []FieldValue
	Body   []BodyValue
	Fields map[string][]FieldValue
}

func (p NodePayload) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}
	if len(p.Body) > 0 {
		out["body"] = p.Body
	}
	for name, values := range p.Fields {
		out[name] = values
	}
	return json.Marshal(out)
}

// ParseNodeID extracts the created node's id from a create response,
// which by convention arrives as nid[0].value. The value is a number on
// stock sites but may serialize as a string; both are accepted. Returns
// "" when the convention does not hold — callers treat that as unknown
// id, not as a failed creation.
func ParseNodeID(body []byte) string {
	var resp struct {
		Nid []struct {
			Value json.Number `json:"value"`
		} `json:"nid"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	if len(resp.Nid) == 0 {
		return ""
	}
	return resp.Nid[0].Value.String()
}
