package domain

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Metadata keys understood by consumers. Every key is optional.
//
//	region                 all types with a geography (state code or "National")
//	organization_id        program, service, person, media, story
//	organization_name      program, service, person
//	category               program, service, research
//	tags                   any ([]string)
//	image_url              organization, person, media, story
//	media_kind             media, story (image, video, audio, story)
//	elder_approved         program, service, media, story (bool)
//	cultural_sensitivity   media, story
//	created_at             any (time.Time)
//	evidence_level         program, research
//	role                   person
const (
	MetaRegion              = "region"
	MetaOrganizationID      = "organization_id"
	MetaOrganizationName    = "organization_name"
	MetaCategory            = "category"
	MetaTags                = "tags"
	MetaImageURL            = "image_url"
	MetaMediaKind           = "media_kind"
	MetaElderApproved       = "elder_approved"
	MetaCulturalSensitivity = "cultural_sensitivity"
	MetaCreatedAt           = "created_at"
	MetaEvidenceLevel       = "evidence_level"
	MetaRole                = "role"
)

var knownMetadataKeys = map[string]struct{}{
	MetaRegion: {}, MetaOrganizationID: {}, MetaOrganizationName: {}, MetaCategory: {},
	MetaTags: {}, MetaImageURL: {}, MetaMediaKind: {}, MetaElderApproved: {},
	MetaCulturalSensitivity: {}, MetaCreatedAt: {}, MetaEvidenceLevel: {}, MetaRole: {},
}

// Metadata is the open bag of optional attributes attached to a result
type Metadata map[string]any

// Set stores v under key, skipping zero values so absent stays absent.
func (m Metadata) Set(key string, v any) Metadata {
	switch val := v.(type) {
	case nil:
		return m
	case string:
		if val == "" {
			return m
		}
	case []string:
		if len(val) == 0 {
			return m
		}
	case time.Time:
		if val.IsZero() {
			return m
		}
	}
	m[key] = v
	return m
}

// String returns the value of key as a string, or "" when absent.
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	return cast.ToString(v)
}

// Bool returns the value of key as a bool, or false when absent.
func (m Metadata) Bool(key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	return cast.ToBool(v)
}

// Strings returns the value of key as a string slice.
func (m Metadata) Strings(key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	return cast.ToStringSlice(v)
}

// Time returns the value of key as a time, or the zero time when absent.
func (m Metadata) Time(key string) time.Time {
	v, ok := m[key]
	if !ok {
		return time.Time{}
	}
	return cast.ToTime(v)
}

// Region is shorthand for String(MetaRegion).
func (m Metadata) Region() string {
	return m.String(MetaRegion)
}

// Validate rejects unknown keys and values of the wrong shape.
func (m Metadata) Validate() error {
	for key, v := range m {
		if _, ok := knownMetadataKeys[key]; !ok {
			return fmt.Errorf("unknown metadata key %q", key)
		}
		switch key {
		case MetaElderApproved:
			if _, err := cast.ToBoolE(v); err != nil {
				return fmt.Errorf("metadata %s: %w", key, err)
			}
		case MetaTags:
			if _, err := cast.ToStringSliceE(v); err != nil {
				return fmt.Errorf("metadata %s: %w", key, err)
			}
		case MetaCreatedAt:
			if _, err := cast.ToTimeE(v); err != nil {
				return fmt.Errorf("metadata %s: %w", key, err)
			}
		default:
			if _, err := cast.ToStringE(v); err != nil {
				return fmt.Errorf("metadata %s: %w", key, err)
			}
		}
	}
	return nil
}
