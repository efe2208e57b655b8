package request

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/laconfrerie/confrerie-api/internal/domain"
)

// asValidationError reports the first failing field of an ozzo error as a domain ValidationError.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return domain.NewValidationError("form", err.Error())
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	return domain.NewValidationError(fields[0], errs[fields[0]].Error())
}

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

// atoi reads a form integer the lenient way: garbage counts as zero.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}

	return n
}

// RedirectTarget carries the page a non-AJAX caller returns to.
type RedirectTarget struct {
	RedirectPage string `form:"redirect_page"`
}
