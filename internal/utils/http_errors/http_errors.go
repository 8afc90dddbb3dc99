package utils

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

func WriteJSONError(w http.ResponseWriter, code int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": errorBody{
			Code: code,
			Text: text,
		},
	})
}
