package render

import (
	"encoding/json"
	"io"
)

type jsonRenderer struct {
	w io.Writer
}

func (r *jsonRenderer) Render(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
