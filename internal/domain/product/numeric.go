package product

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Numeric accepts a JSON number or string and keeps its text form.
// 19.99 becomes "19.99", 4.50 becomes "4.5", "12" stays "12".
type Numeric string

func (n *Numeric) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)

	if bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if len(raw) > 0 && raw[0] == '"' {
		var s string

		err := json.Unmarshal(raw, &s)

		if err != nil {
			return err
		}

		*n = Numeric(s)
		return nil
	}

	f, err := strconv.ParseFloat(string(raw), 64)

	if err != nil {
		return fmt.Errorf("must be a number or a string, got %s", raw)
	}

	*n = Numeric(strconv.FormatFloat(f, 'f', -1, 64))

	return nil
}

func (n Numeric) String() string {
	return string(n)
}
