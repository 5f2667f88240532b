package returns

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/shared"
)

// attributeKind is the expected JSON type of a metadata attribute
type attributeKind int

const (
	attrString attributeKind = iota
	attrBool
	attrNumber
)

// metadataSchemas declares, per return type, the overflow attributes the
// metadata side-table may carry. Unknown keys and mistyped values are
// rejected on both write and read.
var metadataSchemas = map[ReturnType]map[string]attributeKind{
	ReturnTypeSale: {
		"gift_receipt":        attrBool,
		"exchange_preference": attrString,
		"serial_numbers":      attrString,
		"store_credit_only":   attrBool,
	},
	ReturnTypePurchase: {
		"carrier":            attrString,
		"tracking_number":    attrString,
		"supplier_contact":   attrString,
		"credit_memo_number": attrString,
	},
	ReturnTypeRental: {
		"odometer_reading":     attrNumber,
		"accessories_returned": attrBool,
		"inspection_notes":     attrString,
		"late_reason":          attrString,
	},
}

// MetadataAttributes is the attribute map, stored as a JSONB column
type MetadataAttributes map[string]any

// Value implements driver.Valuer for GORM to write to JSONB
func (a MetadataAttributes) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for GORM to read from JSONB
func (a *MetadataAttributes) Scan(value any) error {
	if value == nil {
		*a = MetadataAttributes{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan MetadataAttributes: unsupported type")
	}

	if len(bytes) == 0 {
		*a = MetadataAttributes{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// ReturnMetadata holds overflow type-specific attributes for a return that
// are not modeled as columns. At most one record exists per return.
type ReturnMetadata struct {
	ID         uuid.UUID
	ReturnID   uuid.UUID
	ReturnType ReturnType
	Attributes MetadataAttributes `gorm:"type:jsonb"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM
func (ReturnMetadata) TableName() string {
	return "return_metadata"
}

// NewReturnMetadata creates a metadata record after validating the
// attributes against the return type's schema
func NewReturnMetadata(returnID uuid.UUID, returnType ReturnType, attributes map[string]any) (*ReturnMetadata, error) {
	if returnID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RETURN", "Return ID cannot be empty")
	}
	if err := ValidateMetadataAttributes(returnType, attributes); err != nil {
		return nil, err
	}

	now := time.Now()
	return &ReturnMetadata{
		ID:         uuid.New(),
		ReturnID:   returnID,
		ReturnType: returnType,
		Attributes: MetadataAttributes(attributes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Validate re-checks the stored attributes against the per-type schema.
// Called after decoding a persisted record.
func (m *ReturnMetadata) Validate() error {
	return ValidateMetadataAttributes(m.ReturnType, m.Attributes)
}

// ValidateMetadataAttributes checks an attribute map against the schema for
// the given return type
func ValidateMetadataAttributes(returnType ReturnType, attributes map[string]any) error {
	schema, ok := metadataSchemas[returnType]
	if !ok {
		return shared.NewDomainError("INVALID_RETURN_TYPE", fmt.Sprintf("No metadata schema for return type: %s", returnType))
	}

	for key, value := range attributes {
		kind, known := schema[key]
		if !known {
			return shared.NewDomainError("INVALID_METADATA",
				fmt.Sprintf("Attribute %q is not allowed for %s returns", key, returnType))
		}
		if !matchesKind(value, kind) {
			return shared.NewDomainError("INVALID_METADATA",
				fmt.Sprintf("Attribute %q has the wrong type for %s returns", key, returnType))
		}
	}

	return nil
}

func matchesKind(value any, kind attributeKind) bool {
	switch kind {
	case attrString:
		_, ok := value.(string)
		return ok
	case attrBool:
		_, ok := value.(bool)
		return ok
	case attrNumber:
		// JSON decoding yields float64; accept int for values built in code
		switch value.(type) {
		case float64, int, int64:
			return true
		}
		return false
	}
	return false
}
