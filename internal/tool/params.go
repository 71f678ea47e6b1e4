package tool

import (
	"encoding/json"
	"fmt"
)

func getString(params map[string]any, key string) string {
	v, _ := params[key].(string)
	return v
}

// getNumber reads a numeric parameter. JSON numbers decode as float64 but
// callers handing params directly may pass Go integers.
func getNumber(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// jsonString renders v as a compact JSON document. The tools only pass
// maps of marshalable values, so failure indicates a programming error.
func jsonString(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, "encode result: "+err.Error())
	}
	return string(data)
}

// errorJSON is the minimal failure envelope shared by every tool.
func errorJSON(msg string) string {
	return jsonString(map[string]any{"error": msg})
}

// requiredParam extracts a mandatory string parameter. The second return
// is a ready-to-send envelope when the parameter is absent.
func requiredParam(params map[string]any, key string) (string, string, bool) {
	if _, present := params[key]; !present {
		return "", errorJSON(key + " is required"), false
	}
	return getString(params, key), "", true
}
