// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"time"

	"github.com/roseloverx/mtproto/internal/mode"
)

const (
	ApiVersion = 158
	Version    = "v0.3.0"

	DefaultDC = 1

	LogTrace   = "trace"
	LogDebug   = "debug"
	LogInfo    = "info"
	LogWarn    = "warn"
	LogError   = "error"
	LogDisable = "disable"
)

// TransportMode is the framing used on the wire.
type TransportMode = mode.Variant

const (
	ModeAbridged           = mode.Abridged
	ModeIntermediate       = mode.Intermediate
	ModePaddedIntermediate = mode.PaddedIntermediate
	ModeFull               = mode.Full
)

const (
	defaultDownloadWorkers     = 4
	defaultFloodSleepThreshold = 10 * time.Second
	defaultSessionSyncInterval = time.Minute
	defaultDownloadDir         = "downloads"

	// a redirect chain longer than this is a server bug
	maxRedirects = 5

	uploadPartSize   = 512 * 1024
	maxUploadSize    = 1500 * 1024 * 1024
	bigFileThreshold = 10 * 1024 * 1024
	uploadQueueDepth = 16

	downloadChunkSize = 1024 * 1024
	// importing an exported authorization is retried on AUTH_BYTES_INVALID
	importAuthAttempts = 3
)
