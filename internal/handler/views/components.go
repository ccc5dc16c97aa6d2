package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// FlashNotice renders the success and error notices of f. An empty Flash
// renders nothing.
func FlashNotice(f Flash) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if f.Message != "" {
			if err := notice(w, "flash ok", "status", f.Message); err != nil {
				return err
			}
		}
		if f.Error != "" {
			return notice(w, "flash err", "alert", f.Error)
		}
		return nil
	})
}

func notice(w io.Writer, class, role, text string) error {
	_, err := io.WriteString(w, `<div class="`+class+`" role="`+role+`">`+
		templ.EscapeString(text)+"</div>")
	return err
}
