package validation

import (
	"encoding/base64"
	"fmt"

	validation "github.com/jellydator/validation"
)

// EncodedKey validates a standard base64 string that decodes to at least minBytes bytes.
// Empty values pass so that Required stays in charge of presence.
func EncodedKey(minBytes int) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_encoded_key_type", "must be a string")
		}
		if s == "" {
			return nil
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return validation.NewError("validation_encoded_key", "must be valid base64-encoded data")
		}
		if len(decoded) < minBytes {
			return validation.NewError(
				"validation_encoded_key_length",
				fmt.Sprintf("must decode to at least %d bytes", minBytes),
			)
		}
		return nil
	})
}
