package airtable

import (
	"encoding/json"
	"strconv"
	"strings"
)

type Record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

type Attachment struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

type ListOptions struct {
	PageSize int
	View     string
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type updateRequest struct {
	Fields map[string]any `json:"fields"`
}

// Attachments decodes an attachment cell. Anything that is not a list of
// attachment objects yields an empty slice.
func (r Record) Attachments(field string) []Attachment {
	raw, ok := r.Fields[field]
	if !ok || raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var attachments []Attachment
	if err := json.Unmarshal(data, &attachments); err != nil {
		return nil
	}
	return attachments
}

// CellString renders a cell the way the Airtable scripting API's
// getCellValueAsString does for the common field types.
func (r Record) CellString(field string) string {
	return cellString(r.Fields[field])
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "checked"
		}
		return ""
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := cellString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if filename, ok := val["filename"].(string); ok {
			if url, ok := val["url"].(string); ok {
				return filename + " (" + url + ")"
			}
			return filename
		}
		if name, ok := val["name"].(string); ok {
			return name
		}
		data, _ := json.Marshal(val)
		return string(data)
	default:
		data, _ := json.Marshal(val)
		return string(data)
	}
}
