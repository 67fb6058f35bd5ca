// Package domain holds the core types and ports for the bulk importer
package domain

// TrackObject is a single flat record destined for the remote bulk track
// endpoint: either a custom event or a purchase. Classification is
// structural, not type-tagged
type TrackObject map[string]any

// IsPurchase reports whether the object routes to the purchases list.
// A purchase carries both a price and a currency field; anything else is an event
func (o TrackObject) IsPurchase() bool {
	_, hasPrice := o["price"]
	_, hasCurrency := o["currency"]
	return hasPrice && hasCurrency
}

// Batch is an ordered group of TrackObjects sent in one API call
type Batch []TrackObject

// BlobRef identifies the source object in storage
type BlobRef struct {
	Bucket string
	Key    string
}

// String renders the ref as "bucket/key" for logs
func (r BlobRef) String() string { return r.Bucket + "/" + r.Key }

// Input is one invocation's trigger: the blob to import and the byte offset
// to resume from (0 on the first invocation of a file). RunID correlates all
// invocations of one continuation chain; minted when empty
type Input struct {
	Bucket     string `json:"bucket" validate:"required"`
	Key        string `json:"key"    validate:"required"`
	ByteOffset int64  `json:"byte_offset" validate:"gte=0"`
	RunID      string `json:"run_id,omitempty"`
}

// Ref returns the blob reference for the input
func (in Input) Ref() BlobRef { return BlobRef{Bucket: in.Bucket, Key: in.Key} }

// Report is the invocation result
type Report struct {
	ObjectsSent int   `json:"objects_sent"`
	BytesRead   int64 `json:"bytes_read"`
	IsFinished  bool  `json:"is_finished"`
}
