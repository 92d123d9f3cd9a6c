package domain

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const PolicyVersion = "2012-10-17"

// StringList accepts either a JSON string or an array of strings, matching
// how IAM documents may spell Action and Resource.
type StringList []string

func (l StringList) MarshalJSON() ([]byte, error) {
	if len(l) == 1 {
		return json.Marshal(l[0])
	}
	return json.Marshal([]string(l))
}

func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*l = many
	return nil
}

type PolicyStatement struct {
	Sid       string     `json:"Sid,omitempty"`
	Effect    string     `json:"Effect"`
	Principal any        `json:"Principal"`
	Action    StringList `json:"Action"`
	Resource  StringList `json:"Resource"`
}

type PolicyDocument struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}

// PublicReadPolicy grants anonymous s3:GetObject on every object of bucket.
func PublicReadPolicy(bucket string) PolicyDocument {
	return PolicyDocument{
		Version: PolicyVersion,
		Statement: []PolicyStatement{{
			Sid:       "PublicReadGetObject",
			Effect:    "Allow",
			Principal: "*",
			Action:    StringList{"s3:GetObject"},
			Resource:  StringList{fmt.Sprintf("arn:aws:s3:::%s/*", bucket)},
		}},
	}
}

func (p PolicyDocument) IsEmpty() bool { return len(p.Statement) == 0 }

// JSON renders the document in a stable form. An empty document renders as "".
func (p PolicyDocument) JSON() (string, error) {
	if p.IsEmpty() {
		return "", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParsePolicy reads a policy as returned by the provider. Principal values of
// the form {"AWS":"*"} are folded to "*".
func ParsePolicy(raw string) (PolicyDocument, error) {
	var doc PolicyDocument
	if raw == "" {
		return doc, nil
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return PolicyDocument{}, err
	}
	for i, st := range doc.Statement {
		if m, ok := st.Principal.(map[string]any); ok && len(m) == 1 {
			if v, ok := m["AWS"].(string); ok && v == "*" {
				doc.Statement[i].Principal = "*"
			}
		}
	}
	return doc, nil
}

// NormalizePolicy re-renders raw so that formatting differences do not show
// up as drift. Unparseable input is returned unchanged.
func NormalizePolicy(raw string) string {
	doc, err := ParsePolicy(raw)
	if err != nil {
		return raw
	}
	out, err := doc.JSON()
	if err != nil {
		return raw
	}
	return out
}
