// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bills watches a drop directory for grocery receipt files.
//
// Receipts are JSON files exported by banking or store apps. Dropping one
// into the inbox directory makes it show up in the dashboard, ready to be
// submitted for item extraction; submitted receipts are moved into a
// processed/ subdirectory so they are only offered once.
package bills

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Configuration constants for the receipt inbox.
const (
	// DefaultDebounce is how long a file must be quiet before it is read.
	// Receipt files are written by external programs; reading too early
	// catches half a file.
	DefaultDebounce = 500 * time.Millisecond

	// processedDir is where submitted receipts are moved.
	processedDir = "processed"

	// maxReceiptSize caps receipt files. Anything larger is not a receipt.
	maxReceiptSize = 1 * 1024 * 1024

	receiptBuffer = 16
)

// Receipt is one parsed receipt file from the inbox.
type Receipt struct {
	Path    string
	Name    string
	Content json.RawMessage
}

// =============================================================================
// INBOX WATCHER
// =============================================================================

// Inbox watches one directory for receipt files.
type Inbox struct {
	dir      string
	debounce time.Duration
	logger   *log.Logger

	watcher  *fsnotify.Watcher
	receipts chan Receipt
	ctx      context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	pending map[string]time.Time // path -> last change time
}

// NewInbox creates an inbox watcher rooted at dir, creating the directory if
// needed. logger may be nil.
func NewInbox(dir string, debounce time.Duration, logger *log.Logger) (*Inbox, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if err := os.MkdirAll(filepath.Join(dir, processedDir), 0o700); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Inbox{
		dir:      dir,
		debounce: debounce,
		logger:   logger,
		watcher:  watcher,
		receipts: make(chan Receipt, receiptBuffer),
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[string]time.Time),
	}, nil
}

// Receipts returns the channel new receipts arrive on.
func (in *Inbox) Receipts() <-chan Receipt {
	return in.receipts
}

// Watch starts delivering receipts: first anything already sitting in the
// inbox, then new files as they appear.
func (in *Inbox) Watch() error {
	if err := in.watcher.Add(in.dir); err != nil {
		return err
	}

	// Receipts dropped while the app was closed are still pending.
	entries, err := os.ReadDir(in.dir)
	if err != nil {
		return err
	}
	now := time.Now().Add(-in.debounce)
	in.mu.Lock()
	for _, entry := range entries {
		if entry.IsDir() || !isReceiptName(entry.Name()) {
			continue
		}
		in.pending[filepath.Join(in.dir, entry.Name())] = now
	}
	in.mu.Unlock()

	go in.processEvents()
	go in.processPending()
	return nil
}

// Close stops watching and releases resources.
func (in *Inbox) Close() error {
	in.cancel()
	return in.watcher.Close()
}

// MarkProcessed moves a submitted receipt out of the inbox so it is not
// offered again.
func (in *Inbox) MarkProcessed(path string) error {
	dest := filepath.Join(in.dir, processedDir, filepath.Base(path))
	return os.Rename(path, dest)
}

func isReceiptName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

// =============================================================================
// EVENT PROCESSING
// =============================================================================

func (in *Inbox) processEvents() {
	for {
		select {
		case <-in.ctx.Done():
			return

		case event, ok := <-in.watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !isReceiptName(event.Name) {
				continue
			}
			in.mu.Lock()
			in.pending[event.Name] = time.Now()
			in.mu.Unlock()

		case err, ok := <-in.watcher.Errors:
			if !ok {
				return
			}
			in.logger.Printf("bills: watch error: %v", err)
		}
	}
}

// processPending delivers files that have been quiet for the debounce window.
func (in *Inbox) processPending() {
	ticker := time.NewTicker(in.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-in.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			in.mu.Lock()
			var ready []string
			for path, changed := range in.pending {
				if now.Sub(changed) >= in.debounce {
					ready = append(ready, path)
					delete(in.pending, path)
				}
			}
			in.mu.Unlock()

			for _, path := range ready {
				in.deliver(path)
			}
		}
	}
}

// deliver reads and validates one receipt file and pushes it to consumers.
// Unreadable or malformed files are logged and skipped.
func (in *Inbox) deliver(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return // already gone
	}
	if info.Size() > maxReceiptSize {
		in.logger.Printf("bills: skipping oversized file %s (%d bytes)", filepath.Base(path), info.Size())
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		in.logger.Printf("bills: failed to read %s: %v", filepath.Base(path), err)
		return
	}
	if !json.Valid(content) {
		in.logger.Printf("bills: skipping %s: not valid JSON", filepath.Base(path))
		return
	}

	select {
	case in.receipts <- Receipt{Path: path, Name: filepath.Base(path), Content: content}:
	case <-in.ctx.Done():
	}
}
