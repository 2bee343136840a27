package utils

import (
	"encoding/json"
	"errors"
	"io"
)

// WriteIndentedJSON encodes v into w and closes it. A Close failure is
// returned too, since it may hide an unflushed write.
func WriteIndentedJSON(w io.WriteCloser, v any) (err error) {
	defer func() {
		err = errors.Join(err, w.Close())
	}()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
