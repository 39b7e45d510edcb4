package categories

import "errors"

// ErrNameRequired is returned when creating a category without a name.
var ErrNameRequired = errors.New("category name is required")
