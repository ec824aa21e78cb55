package product

import (
	"strings"

	"github.com/google/uuid"
)

// URLResolver derives a public URL for a key stored in the product bucket.
type URLResolver interface {
	PublicURL(key string) string
}

// Resolver classifies a stored image reference and turns it into a fetchable
// URL. The stored column holds a plain string; whether it is an externally
// hosted URL or a bucket key is inferred from the scheme prefix. A stored key
// that happens to start with "http://" would be misclassified as external;
// keys are uuid-based (see objectKey) so this does not occur in practice.
type Resolver struct {
	urls URLResolver
}

// NewResolver returns a Resolver backed by the given object store.
func NewResolver(urls URLResolver) Resolver {
	return Resolver{urls: urls}
}

// Resolve maps a stored reference to a directly usable URL. It is pure and
// idempotent: an already-resolved URL still matches the external prefix test
// and is returned unchanged, so every list/get/create/update path can apply
// it independently.
func (r Resolver) Resolve(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return r.urls.PublicURL(raw)
}

// objectKey builds a collision-resistant storage key for an uploaded file.
// The token is a v4 UUID, so no coordination across concurrent uploaders is
// needed; the original extension (substring after the last dot) is preserved.
func objectKey(filename string) string {
	key := uuid.New().String()
	if i := strings.LastIndexByte(filename, '.'); i >= 0 && i < len(filename)-1 {
		key += "." + filename[i+1:]
	}
	return key
}

type imageOp int

const (
	imageUnchanged imageOp = iota
	imageClear
	imageSet
)

// ImagePatch expresses the caller's intent for the image column on update as
// an explicit tri-state: unchanged (column absent from the update), clear
// (column set to NULL), or set (column replaced with a value). A plain
// optional string cannot represent "absent", which is load-bearing here.
type ImagePatch struct {
	op    imageOp
	value string
}

// ImageUnchanged leaves the stored reference untouched.
func ImageUnchanged() ImagePatch { return ImagePatch{} }

// ImageClear removes the stored reference.
func ImageClear() ImagePatch { return ImagePatch{op: imageClear} }

// ImageSet replaces the stored reference. An empty value is equivalent to
// ImageClear.
func ImageSet(value string) ImagePatch {
	if value == "" {
		return ImageClear()
	}
	return ImagePatch{op: imageSet, value: value}
}

// Include reports whether the image column participates in the update.
func (p ImagePatch) Include() bool { return p.op != imageUnchanged }

// Value returns the reference to store; empty means NULL (clear).
func (p ImagePatch) Value() string { return p.value }
