package voxels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/dustin/go-humanize"

	"github.com/thatcher/pydvid/dvid"
	"github.com/thatcher/pydvid/transport"
)

// Accessor is the façade over one remote volume: it holds the caller's
// connection, the volume identity, and cached Metadata, and exposes
// array-like bounded reads and writes.  Calls on one Accessor are sequential
// by construction; callers wanting parallel transfers use multiple accessors,
// each over its own connection.
type Accessor struct {
	client *transport.Client
	uuid   dvid.UUID
	name   dvid.InstanceName

	md    *Metadata
	codec *NdDataCodec

	throttle    bool
	compression dvid.Compression
}

// Option adjusts accessor behavior at construction.
type Option func(*options)

type options struct {
	throttle    bool
	compression dvid.Compression
	retry       transport.RetryPolicy
	description string
}

// Throttle adds the "throttle" query option to voxel transfers so the server
// may answer busy (503) instead of queueing, which this client then retries
// with backoff.  On by default.
func Throttle(on bool) Option {
	return func(o *options) { o.throttle = on }
}

// Compress selects payload compression for voxel transfers.
func Compress(compression dvid.Compression) Option {
	return func(o *options) { o.compression = compression }
}

// Retry overrides the busy-retry policy.
func Retry(policy transport.RetryPolicy) Option {
	return func(o *options) { o.retry = policy }
}

// Describe attaches a free-text description to a volume at creation time.
// Only CreateNew consults it; the nd metadata document has no field for it.
func Describe(description string) Option {
	return func(o *options) { o.description = description }
}

func applyOptions(opts []Option) *options {
	o := &options{throttle: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// New returns an accessor for an existing volume, fetching and caching its
// metadata from the server.  The connection is owned by the caller; one
// connection should serve one accessor at a time unless its implementation is
// safe for concurrent use.
func New(ctx context.Context, conn transport.Connection, uuid dvid.UUID, name dvid.InstanceName, opts ...Option) (*Accessor, error) {
	if err := dvid.IsValidUUID(uuid); err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	a := &Accessor{
		client:      transport.NewClient(conn, o.retry),
		uuid:        uuid,
		name:        name,
		throttle:    o.throttle,
		compression: o.compression,
	}
	if err := a.RefreshMetadata(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateNew creates a volume on the server and returns an accessor for it.
// The server datatype is derived from the metadata's element type and channel
// count.  Volume creation mutates dataset topology, so it is kept off the
// read/write hot path and never retried beyond the busy signal.
func CreateNew(ctx context.Context, conn transport.Connection, uuid dvid.UUID, name dvid.InstanceName, md *Metadata, opts ...Option) (*Accessor, error) {
	if err := dvid.IsValidUUID(uuid); err != nil {
		return nil, err
	}
	typename, err := md.TypeName()
	if err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	client := transport.NewClient(conn, o.retry)

	settings := map[string]string{
		"typename": typename,
		"dataname": string(name),
	}
	if o.description != "" {
		settings["description"] = o.description
	}
	instance, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(ctx, &transport.Request{
		Method:      "POST",
		Path:        fmt.Sprintf("/api/repo/%s/instance", uuid),
		ContentType: "application/json",
		GetBody: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(instance)), nil
		},
	})
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	a := &Accessor{
		client:      client,
		uuid:        uuid,
		name:        name,
		throttle:    o.throttle,
		compression: o.compression,
	}
	if err := a.PushMetadata(ctx, md); err != nil {
		return nil, err
	}
	dvid.Infof("Created %s instance %q on version %s\n", typename, name, uuid)
	return a, nil
}

// UUID returns the version node this accessor addresses.
func (a *Accessor) UUID() dvid.UUID {
	return a.uuid
}

// Name returns the volume name this accessor addresses.
func (a *Accessor) Name() dvid.InstanceName {
	return a.name
}

// Metadata returns the cached volume metadata.  It reflects the server as of
// construction or the last RefreshMetadata/PushMetadata.
func (a *Accessor) Metadata() *Metadata {
	return a.md
}

func (a *Accessor) metadataPath() string {
	return fmt.Sprintf("/api/node/%s/%s/metadata", a.uuid, a.name)
}

// RefreshMetadata re-fetches the volume's metadata document and replaces the
// cached instance.
func (a *Accessor) RefreshMetadata(ctx context.Context) error {
	resp, err := a.client.Do(ctx, &transport.Request{Method: "GET", Path: a.metadataPath()})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read metadata for %q: %w", a.name, err)
	}
	md, err := ParseMetadata(doc)
	if err != nil {
		return err
	}
	a.md = md
	a.codec = NewNdDataCodec(md)
	return nil
}

// PushMetadata serializes and uploads a replacement metadata document, then
// caches it.  Metadata is replaced, never edited in place.
func (a *Accessor) PushMetadata(ctx context.Context, md *Metadata) error {
	doc, err := md.ToJSON()
	if err != nil {
		return err
	}
	resp, err := a.client.Do(ctx, &transport.Request{
		Method:      "POST",
		Path:        a.metadataPath(),
		ContentType: NdDataMimetype,
		GetBody: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(doc)), nil
		},
	})
	if err != nil {
		return err
	}
	resp.Body.Close()
	a.md = md
	a.codec = NewNdDataCodec(md)
	return nil
}

func (a *Accessor) rawQuery(w *WireRange) url.Values {
	query := url.Values{}
	query.Set("values", w.ChannelsString())
	if a.throttle {
		query.Set("throttle", "on")
	}
	if qs := a.compression.QueryString(); qs != "" {
		query.Set("compression", qs)
	}
	return query
}

// GetNDArray reads the bounded region [beg, end), both channel-first and
// half-open.  Bounds are validated against cached metadata before any
// network call; a region empty along any axis returns an empty array with no
// exchange at all.
func (a *Accessor) GetNDArray(ctx context.Context, beg, end dvid.PointNd) (*NDArray, error) {
	w, err := ToWire(beg, end, a.md)
	if err != nil {
		return nil, err
	}
	shape := w.RequestShape()
	if w.IsEmpty() {
		return NewNDArray(shape, a.md.DataType()), nil
	}
	// Protocol self-check: the wire form must map back onto what was asked.
	gotBeg, gotEnd, err := FromWire(w, a.md)
	if err != nil {
		return nil, err
	}
	if !gotBeg.Equals(beg) || !gotEnd.Equals(end) {
		return nil, decodingErrorf("wire range %s/%s does not round-trip to requested %s/%s",
			w.Offset, w.Size, beg, end)
	}

	timedLog := dvid.NewTimeLog()
	resp, err := a.client.Do(ctx, &transport.Request{
		Method: "GET",
		Path:   w.RawPath(a.uuid, a.name),
		Query:  a.rawQuery(w),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	stream, err := a.compression.WrapReader(resp.Body)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	array, err := a.codec.DecodeToNDArray(stream, shape)
	if err != nil {
		return nil, err
	}
	timedLog.Debugf("GET %q voxels %s (%s)", a.name, shape,
		humanize.Bytes(uint64(a.codec.BufferBytes(shape))))
	return array, nil
}

// PostNDArray writes a region to the bounded range [beg, end).  The array's
// shape must equal end-beg exactly; mismatches fail before any network call.
func (a *Accessor) PostNDArray(ctx context.Context, beg, end dvid.PointNd, array *NDArray) error {
	w, err := ToWire(beg, end, a.md)
	if err != nil {
		return err
	}
	shape := w.RequestShape()
	if !array.Shape().Equals(shape) {
		return &ShapeMismatchError{Expected: shape, Got: array.Shape()}
	}
	if w.IsEmpty() {
		return nil
	}

	timedLog := dvid.NewTimeLog()
	resp, err := a.client.Do(ctx, &transport.Request{
		Method:      "POST",
		Path:        w.RawPath(a.uuid, a.name),
		Query:       a.rawQuery(w),
		ContentType: VolumeMimetype,
		GetBody:     a.postBody(array),
	})
	if err != nil {
		return err
	}
	resp.Body.Close()
	timedLog.Debugf("POST %q voxels %s (%s)", a.name, shape,
		humanize.Bytes(uint64(a.codec.BufferBytes(shape))))
	return nil
}

// postBody returns a body factory that can be replayed on busy retry.  With
// compression enabled the payload streams through a pipe so no compressed
// copy is ever fully resident.
func (a *Accessor) postBody(array *NDArray) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		if a.compression == dvid.Uncompressed {
			return a.codec.EncodedReader(array)
		}
		if _, err := a.codec.checkedBuffer(array); err != nil {
			return nil, err
		}
		pr, pw := io.Pipe()
		go func() {
			zw, err := a.compression.WrapWriter(pw)
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			if err := a.codec.EncodeFromNDArray(zw, array); err != nil {
				pw.CloseWithError(err)
				return
			}
			pw.CloseWithError(zw.Close())
		}()
		return pr, nil
	}
}

// Read evaluates a per-axis slice expression against the volume, e.g.,
//
//	array, err := a.Read(ctx, voxels.All(), voxels.Span(10, 110), voxels.Span(20, 120), voxels.At(30))
//
// reads all channels of a rectangle on one z plane, collapsing the z axis out
// of the result's shape.
func (a *Accessor) Read(ctx context.Context, slices ...Slice) (*NDArray, error) {
	beg, end, collapse, err := resolveSlices(slices, a.md)
	if err != nil {
		return nil, err
	}
	array, err := a.GetNDArray(ctx, beg, end)
	if err != nil {
		return nil, err
	}
	return array.collapse(collapse), nil
}

// Write stores a region into the bounds a slice expression resolves to.  The
// array's channel-first shape must match those bounds exactly, with single
// index slices contributing extent-1 axes.
func (a *Accessor) Write(ctx context.Context, array *NDArray, slices ...Slice) error {
	beg, end, _, err := resolveSlices(slices, a.md)
	if err != nil {
		return err
	}
	return a.PostNDArray(ctx, beg, end, array)
}
