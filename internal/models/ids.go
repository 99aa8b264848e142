package models

import (
	"fmt"
	"strings"

	"auction-marketplace/internal/marketerrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID converts a hex object id supplied by a client. field is used in the error message.
func ParseID(field, value string) (primitive.ObjectID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return primitive.NilObjectID, fmt.Errorf("%w: %s is required", marketerrors.ErrInvalidID, field)
	}
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s %q is not a valid id", marketerrors.ErrInvalidID, field, value)
	}
	return id, nil
}

// ParseIDs parses a comma separated id list, skipping empty entries.
func ParseIDs(field, csv string) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := ParseID(field, part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
