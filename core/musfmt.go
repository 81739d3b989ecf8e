package core

import (
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the records persisted in the document
// store. The field order is part of the stored format; append new fields
// at the end only.
var (
	IDMUS      = idSer{}
	TenantMUS  = tenantSer{}
	SectionMUS = sectionSer{}
	ChunkMUS   = chunkSer{}
	TurnMUS    = turnSer{}
	TurnsMUS   = ord.NewSliceSer[Turn](turnSer{})
)

var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

type idSer struct{}

var _ mus.Serializer[ID] = idSer{}

func (idSer) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idSer) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idSer) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// timeSer stores timestamps as Unix microseconds.
type timeSer struct{}

func (timeSer) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeSer) Unmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeSer) Size(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeSer) Skip(bs []byte) (int, error) {
	return varint.Int64.Skip(bs)
}

var timeMUS = timeSer{}

type tenantSer struct{}

var _ mus.Serializer[Tenant] = tenantSer{}

func (tenantSer) Marshal(t Tenant, bs []byte) (n int) {
	n = IDMUS.Marshal(t.Id, bs)
	n += ord.String.Marshal(t.Name, bs[n:])
	n += ord.String.Marshal(t.KeyHash, bs[n:])
	n += varint.Int.Marshal(int(t.Plan), bs[n:])
	n += varint.Int.Marshal(t.Limits.RequestsPerMinute, bs[n:])
	n += varint.Int.Marshal(t.Limits.RequestsPerHour, bs[n:])
	n += varint.Int.Marshal(t.Limits.APICallsPerMonth, bs[n:])
	n += varint.Int.Marshal(t.Limits.SectionsPerTenant, bs[n:])
	n += varint.Int.Marshal(t.Limits.MaxTokensPerRequest, bs[n:])
	n += varint.Int.Marshal(int(t.Status), bs[n:])
	n += timeMUS.Marshal(t.InsertedAt, bs[n:])
	n += timeMUS.Marshal(t.UpdatedAt, bs[n:])
	return n
}

func (tenantSer) Unmarshal(bs []byte) (t Tenant, n int, err error) {
	var m int
	if t.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if t.Name, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return t, n + m, err
	}
	n += m
	if t.KeyHash, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return t, n + m, err
	}
	n += m
	var v int
	if v, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return t, n + m, err
	}
	t.Plan = PlanTier(v)
	n += m
	if t.Limits.RequestsPerMinute, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return t, n + m, err
	}
	n += m
	if t.Limits.RequestsPerHour, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return t, n + m, err
	}
	n += m
	if t.Limits.APICallsPerMonth, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return t, n + m, err
	}
	n += m
	if t.Limits.SectionsPerTenant, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return t, n + m, err
	}
	n += m
	if t.Limits.MaxTokensPerRequest, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return t, n + m, err
	}
	n += m
	if v, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return t, n + m, err
	}
	t.Status = TenantStatus(v)
	n += m
	if t.InsertedAt, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return t, n + m, err
	}
	n += m
	if t.UpdatedAt, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return t, n + m, err
	}
	n += m
	return t, n, nil
}

func (tenantSer) Size(t Tenant) (size int) {
	size = IDMUS.Size(t.Id)
	size += ord.String.Size(t.Name)
	size += ord.String.Size(t.KeyHash)
	size += varint.Int.Size(int(t.Plan))
	size += varint.Int.Size(t.Limits.RequestsPerMinute)
	size += varint.Int.Size(t.Limits.RequestsPerHour)
	size += varint.Int.Size(t.Limits.APICallsPerMonth)
	size += varint.Int.Size(t.Limits.SectionsPerTenant)
	size += varint.Int.Size(t.Limits.MaxTokensPerRequest)
	size += varint.Int.Size(int(t.Status))
	size += timeMUS.Size(t.InsertedAt)
	size += timeMUS.Size(t.UpdatedAt)
	return size
}

func (s tenantSer) Skip(bs []byte) (n int, err error) {
	t, n, err := s.Unmarshal(bs)
	_ = t
	return n, err
}

type sectionSer struct{}

var _ mus.Serializer[Section] = sectionSer{}

func (sectionSer) Marshal(s Section, bs []byte) (n int) {
	n = IDMUS.Marshal(s.Id, bs)
	n += IDMUS.Marshal(s.TenantId, bs[n:])
	n += ord.String.Marshal(s.Type, bs[n:])
	n += ord.String.Marshal(s.Title, bs[n:])
	n += ord.String.Marshal(s.Text, bs[n:])
	n += varint.Int.Marshal(s.ChunkCount, bs[n:])
	n += varint.Int.Marshal(int(s.Status), bs[n:])
	n += timeMUS.Marshal(s.InsertedAt, bs[n:])
	n += timeMUS.Marshal(s.UpdatedAt, bs[n:])
	return n
}

func (sectionSer) Unmarshal(bs []byte) (s Section, n int, err error) {
	var m int
	if s.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if s.TenantId, m, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.Type, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.Title, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.ChunkCount, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	var v int
	if v, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	s.Status = SectionStatus(v)
	n += m
	if s.InsertedAt, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.UpdatedAt, m, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	return s, n, nil
}

func (sectionSer) Size(s Section) (size int) {
	size = IDMUS.Size(s.Id)
	size += IDMUS.Size(s.TenantId)
	size += ord.String.Size(s.Type)
	size += ord.String.Size(s.Title)
	size += ord.String.Size(s.Text)
	size += varint.Int.Size(s.ChunkCount)
	size += varint.Int.Size(int(s.Status))
	size += timeMUS.Size(s.InsertedAt)
	size += timeMUS.Size(s.UpdatedAt)
	return size
}

func (s sectionSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

type chunkSer struct{}

var _ mus.Serializer[Chunk] = chunkSer{}

func (chunkSer) Marshal(c Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += IDMUS.Marshal(c.SectionId, bs[n:])
	n += IDMUS.Marshal(c.TenantId, bs[n:])
	n += varint.Int.Marshal(c.Ordinal, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += vectorMUS.Marshal(c.Vector, bs[n:])
	n += ord.String.Marshal(c.SectionTitle, bs[n:])
	n += ord.String.Marshal(c.SectionType, bs[n:])
	return n
}

func (chunkSer) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var m int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.SectionId, m, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	if c.TenantId, m, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	if c.Ordinal, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	if c.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	if c.Vector, m, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	if c.SectionTitle, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	if c.SectionType, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	return c, n, nil
}

func (chunkSer) Size(c Chunk) (size int) {
	size = IDMUS.Size(c.Id)
	size += IDMUS.Size(c.SectionId)
	size += IDMUS.Size(c.TenantId)
	size += varint.Int.Size(c.Ordinal)
	size += ord.String.Size(c.Text)
	size += vectorMUS.Size(c.Vector)
	size += ord.String.Size(c.SectionTitle)
	size += ord.String.Size(c.SectionType)
	return size
}

func (s chunkSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

type turnSer struct{}

var _ mus.Serializer[Turn] = turnSer{}

func (turnSer) Marshal(t Turn, bs []byte) (n int) {
	n = varint.Int.Marshal(int(t.Role), bs)
	n += ord.String.Marshal(t.Text, bs[n:])
	return n
}

func (turnSer) Unmarshal(bs []byte) (t Turn, n int, err error) {
	var v, m int
	if v, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	t.Role = TurnRole(v)
	if t.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return t, n + m, err
	}
	n += m
	return t, n, nil
}

func (turnSer) Size(t Turn) int {
	return varint.Int.Size(int(t.Role)) + ord.String.Size(t.Text)
}

func (s turnSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}
