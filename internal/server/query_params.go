package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	venuedomain "github.com/smallbiznis/streetsignal/internal/venue/domain"
)

// venueFilterFromQuery reads ?lit=&water=&q=. Amenity flags accept any
// strconv.ParseBool spelling; absent means no constraint.
func venueFilterFromQuery(c *gin.Context) (venuedomain.Filter, error) {
	var errs []ValidationError
	amenity := func(name string) bool {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			return false
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, ValidationError{Field: name, Code: "invalid_" + name, Message: "invalid " + name})
			return false
		}
		return v
	}

	filter := venuedomain.Filter{
		Lit:   amenity("lit"),
		Water: amenity("water"),
		Query: strings.TrimSpace(c.Query("q")),
	}
	if len(errs) > 0 {
		return venuedomain.Filter{}, &ValidationErrors{Errors: errs}
	}
	return filter, nil
}
