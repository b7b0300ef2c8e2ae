package branch

import "fmt"

// Category keys an outcome variant by roll result.
type Category string

const (
	Success         Category = "success"
	Failure         Category = "failure"
	CriticalSuccess Category = "critical_success"
	CriticalFailure Category = "critical_failure"
)

// Categories lists every category in lookup order.
var Categories = []Category{Success, Failure, CriticalSuccess, CriticalFailure}

// ParseCategory validates a category key.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown outcome category: %q", s)
}

func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

func (c Category) String() string {
	return string(c)
}

// UnmarshalText rejects keys outside the closed set, including map keys.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
