// Copyright (c) 2026 Yomikata. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the admin HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Scan Pipeline: timing budgets for the ingest subsystem.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "yomikata-ingest"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long the scan queue's Shutdown waits for the worker to finish its current task.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Database Schema

const (
	SchemaIngest = "ingest"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixMetadataSubject = "metadata:subject:"
)

// # Scan Pipeline Timing

const (
	// DefaultWatchDebounce is the quiescence window after a filesystem event
	// before a rescan is submitted.
	DefaultWatchDebounce = 500 * time.Millisecond

	// DefaultMetadataHTTPTimeout bounds a single metadata catalog HTTP call.
	DefaultMetadataHTTPTimeout = 10 * time.Second

	// ScanHistoryRetention is how long terminal scan tasks remain in history.
	ScanHistoryRetention = 24 * time.Hour

	// DefaultScanHistoryLimit is applied when a caller does not specify one.
	DefaultScanHistoryLimit = 50

	// ThumbnailMaxWidth and ThumbnailMaxHeight bound the resize-to-fit box
	// applied to every extracted cover image.
	ThumbnailMaxWidth  = 300
	ThumbnailMaxHeight = 450

	// ThumbnailJPEGQuality is the re-encode quality used for all thumbnails.
	ThumbnailJPEGQuality = 80

	// PDFRenderScale is the scale factor applied when rendering a PDF page
	// to a raster image.
	PDFRenderScale = 2.0
)
