package resumes

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var errNotPDF = errors.New("file is not a readable PDF")

// inspectPDF parses data and returns its page count. The parser panics on
// some malformed inputs, so panics are reported as errors.
func inspectPDF(data []byte) (pages int, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, errNotPDF
	}
	defer func() {
		if r := recover(); r != nil {
			pages = 0
			err = fmt.Errorf("%w: %v", errNotPDF, r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errNotPDF, err)
	}
	return reader.NumPage(), nil
}
