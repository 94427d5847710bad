package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	"lastochka/messenger/internal/apperr"
)

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Unprocessable("invalid request body")
	}
	return nil
}

func queryLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

func queryCursor(r *http.Request) string {
	return r.URL.Query().Get("cursor")
}

func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, nil, apperr.Unprocessable("invalid multipart form")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, apperr.Unprocessable("missing file field " + field)
	}
	return file, header, nil
}
