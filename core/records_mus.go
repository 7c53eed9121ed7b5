package core

import (
	"errors"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// ErrVectorLength is returned when a serialized vector claims more elements than the record holds.
var ErrVectorLength = errors.New("vector length exceeds record size")

// ArticleMUS serializes Article values in MUS format.
// Timestamps are stored as Unix microseconds.
var ArticleMUS = articleMUS{}

type articleMUS struct{}

func (s articleMUS) Marshal(v Article, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += ord.String.Marshal(v.DocumentID, bs[n:])
	n += ord.String.Marshal(v.Label, bs[n:])
	n += varint.Int.Marshal(v.Position, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += VectorMUS.Marshal(v.Vector, bs[n:])
	n += marshalMicros(v.InsertedAt, bs[n:])
	return
}

func (s articleMUS) Unmarshal(bs []byte) (v Article, n int, err error) {
	id, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Id = ID(id)
	var n1 int
	v.DocumentID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Label, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Position, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = VectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = unmarshalMicros(bs[n:])
	n += n1
	return
}

func (s articleMUS) Size(v Article) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += ord.String.Size(v.DocumentID)
	size += ord.String.Size(v.Label)
	size += varint.Int.Size(v.Position)
	size += ord.String.Size(v.Text)
	size += VectorMUS.Size(v.Vector)
	return size + sizeMicros(v.InsertedAt)
}

func (s articleMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// DocumentSummaryMUS serializes the stored part of a DocumentSummary.
// DocumentID is not written; it lives in the storage key.
var DocumentSummaryMUS = documentSummaryMUS{}

type documentSummaryMUS struct{}

func (s documentSummaryMUS) Marshal(v DocumentSummary, bs []byte) (n int) {
	n = varint.Int.Marshal(v.Articles, bs)
	n += marshalMicros(v.InsertedAt, bs[n:])
	return
}

func (s documentSummaryMUS) Unmarshal(bs []byte) (v DocumentSummary, n int, err error) {
	v.Articles, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.InsertedAt, n1, err = unmarshalMicros(bs[n:])
	n += n1
	return
}

func (s documentSummaryMUS) Size(v DocumentSummary) (size int) {
	return varint.Int.Size(v.Articles) + sizeMicros(v.InsertedAt)
}

func (s documentSummaryMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// VectorMUS serializes embeddings as a varint length followed by raw float32 values.
var VectorMUS = vectorMUS{}

type vectorMUS struct{}

func (s vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(len(v)), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

func (s vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	if length == 0 {
		return
	}
	if length > uint64(len(bs)-n)/4 {
		err = ErrVectorLength
		return
	}
	v = make([]float32, length)
	var n1 int
	for i := range v {
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (s vectorMUS) Size(v []float32) (size int) {
	size = varint.Uint64.Size(uint64(len(v)))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return
}

func (s vectorMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

func marshalMicros(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalMicros(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func sizeMicros(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}
