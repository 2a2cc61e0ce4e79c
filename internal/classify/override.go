package classify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownColumn is returned when an override names a column the table lacks.
var ErrUnknownColumn = errors.New("unknown column")

// NoAuthor as an author override drops the author column.
const NoAuthor = "-"

// Override replaces detected roles with operator choices. Empty values keep the
// detected role. Feedback and author must differ.
func Override(res Result, feedback, author string) (Result, error) {
	feedback = strings.TrimSpace(feedback)
	author = strings.TrimSpace(author)

	if feedback != "" {
		if _, ok := res.Profile(feedback); !ok {
			return res, fmt.Errorf("%w: feedback column %q", ErrUnknownColumn, feedback)
		}
		res.Feedback = feedback
		if res.Author == feedback && author == "" {
			res.Author = ""
		}
	}
	switch author {
	case "":
	case NoAuthor:
		res.Author = ""
	default:
		if _, ok := res.Profile(author); !ok {
			return res, fmt.Errorf("%w: author column %q", ErrUnknownColumn, author)
		}
		res.Author = author
	}
	if res.Author != "" && res.Author == res.Feedback {
		return res, fmt.Errorf("feedback and author cannot both be %q", res.Feedback)
	}
	return res, nil
}
