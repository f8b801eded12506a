package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// fieldRank orders sibling fields so that the reported error is the first one
// in declaration order, not the first one in map iteration order.
var fieldRank = map[string]int{
	"title": 1, "description": 2, "price": 3, "quantity": 4, "tags": 5,
	"items": 10, "_id": 11, "delivery": 12, "pickup": 13, "address": 14, "phone": 15, "cost": 16,
	"payment": 20, "paymentId": 21, "platform": 22, "platformName": 23, "paid": 24, "status": 25,
	"email": 30, "firstname": 31, "lastname": 32, "role": 33,
	"files": 40, "limit": 50, "offset": 51, "sort": 52, "query": 53, "user": 54,
}

// Check validates v and converts the first failure into a Validation error
// whose field is a path such as "items[0].quantity".
func Check(v validation.Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return fmt.Errorf("validate: %w", err)
	}
	path, message := firstFailure(err, "")
	return Validation(path, message)
}

func firstFailure(err error, prefix string) (string, string) {
	errs, ok := err.(validation.Errors)
	if !ok || len(errs) == 0 {
		return prefix, err.Error()
	}

	keys := make([]string, 0, len(errs))
	for k, e := range errs {
		if e != nil {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return prefix, err.Error()
	}
	sort.Slice(keys, func(i, j int) bool { return lessField(keys[i], keys[j]) })

	key := keys[0]
	return firstFailure(errs[key], joinPath(prefix, key))
}

func lessField(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return ai < bi
	}
	ra, okA := fieldRank[a]
	rb, okB := fieldRank[b]
	switch {
	case okA && okB:
		return ra < rb
	case okA != okB:
		return okA
	}
	return a < b
}

func joinPath(prefix, key string) string {
	if _, err := strconv.Atoi(key); err == nil {
		return prefix + "[" + key + "]"
	}
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
