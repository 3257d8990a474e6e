package props

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	ferrors "github.com/sycltools/aspect-filter/internal/errors"
)

// TestProperty_AspectsEncodeDecode validates that any identifier list,
// including values whose little-endian encoding contains pipe bytes,
// survives an encode/decode round trip. Identifiers whose encoding
// contains a newline byte are not representable in the line-oriented
// property format and are skipped.
func TestProperty_AspectsEncodeDecode(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("encode then parse yields the same identifiers", prop.ForAll(
		func(ids []uint32) bool {
			line := aspectsLine(ids)
			if bytes.IndexByte(line[:len(line)-1], '\n') >= 0 {
				return true
			}

			var data bytes.Buffer
			data.WriteString(RequirementsSection + "\n")
			data.Write(line)
			data.WriteString("reqd_sub_group_size|16\n")

			req, err := Parse(data.Bytes())
			if err != nil {
				return false
			}
			if len(req.Aspects) != len(ids) {
				return false
			}
			for i := range ids {
				if req.Aspects[i] != ids[i] {
					return false
				}
			}
			// The line after the blob must still parse.
			return req.ReqdSubGroupSize != nil && *req.ReqdSubGroupSize == 16
		},
		gen.SliceOf(gen.UInt32()),
	))

	properties.TestingRun(t)
}

// TestProperty_TruncatedBlobNeverPanics validates that truncating an
// aspects frame at any byte yields a FORMAT error or a clean parse,
// never a panic or out-of-bounds read.
func TestProperty_TruncatedBlobNeverPanics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("truncation yields FORMAT error or success", prop.ForAll(
		func(ids []uint32, cut int) bool {
			var data bytes.Buffer
			data.WriteString(RequirementsSection + "\n")
			data.Write(aspectsLine(ids))

			full := data.Bytes()
			if cut < 0 {
				cut = -cut
			}
			truncated := full[:cut%(len(full)+1)]

			req, err := Parse(truncated)
			if err != nil {
				return ferrors.CategoryOf(err) == ferrors.ErrCategoryFormat
			}
			_ = req
			return true
		},
		gen.SliceOfN(4, gen.UInt32()),
		gen.Int(),
	))

	properties.TestingRun(t)
}
