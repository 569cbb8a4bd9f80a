// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package redact

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/sassoftware/pdf-redact/logger"
	"golang.org/x/sync/semaphore"
)

// Redactor defines the contract for rewriting a document's text content
// and metadata in place.
type Redactor interface {
	Redact(ctx context.Context, doc *Document, opts Options) ([]PageStream, error)
}

// Options carries the filter chains for one redaction run.
type Options struct {
	// ContentFilters run in order against the whole document's
	// flattened text, pages concatenated in page order. When empty,
	// page content is left untouched and no page streams are produced.
	ContentFilters []ContentFilter

	// MetadataFilters rewrite the Document Information Dictionary.
	MetadataFilters MetadataFilters

	// XMPFilters rewrite the XMP metadata tree; XMPSerializer, when
	// set, replaces the default encoding/xml serialization.
	XMPFilters    []XMPTransform
	XMPSerializer XMPSerializer
}

// redactor coordinates per-page work with bounded concurrency.
type redactor struct {
	cfg *Config
	sem *semaphore.Weighted
}

// NewRedactor validates the config and creates a new redactor.
func NewRedactor(cfg *Config) *redactor {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	if cfg.Logger != nil {
		logger.SetLogger(cfg.Logger)
	}

	logger.Debug(fmt.Sprintf("Redactor initialized: max_concurrent_documents=%d max_concurrent_pages=%d replacement_glyphs=%d",
		cfg.MaxConcurrentDocuments, cfg.MaxConcurrentPages, len(cfg.ReplacementGlyphs)), true)

	return &redactor{
		cfg: cfg,
		sem: semaphore.NewWeighted(int64(cfg.MaxConcurrentDocuments)),
	}
}

type buildResult struct {
	index int
	page  *builtPage
	err   error
}

// Redact runs the content, metadata, and XMP filter chains over doc and
// returns one replacement stream per page, in page order. The document
// is processed all-or-nothing: any parse or encoding failure on any
// page fails the whole call.
func (r *redactor) Redact(ctx context.Context, doc *Document, opts Options) (streams []PageStream, err error) {
	if err := r.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer r.sem.Release(1)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Debug(fmt.Sprintf("Recovered from panic during redaction: %v", rec), true)
			streams = nil
			err = fmt.Errorf("redact: %v", rec)
		}
	}()

	if len(opts.ContentFilters) > 0 {
		streams, err = r.redactPages(ctx, doc, opts.ContentFilters)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Debug("No content filters configured, skipping page content", true)
	}

	if err := updateXMP(doc, opts.XMPFilters, opts.XMPSerializer); err != nil {
		return nil, err
	}
	updateMetadata(doc, opts.MetadataFilters)

	logger.Debug(fmt.Sprintf("Redaction completed: pages=%d", len(streams)), true)
	return streams, nil
}

func (r *redactor) redactPages(ctx context.Context, doc *Document, filters []ContentFilter) ([]PageStream, error) {
	total := len(doc.Pages)
	if total == 0 {
		return nil, nil
	}

	rctx := newRunContext(r.cfg)
	numWorkers := r.adjustWorkerCount(r.cfg.MaxConcurrentPages, total)
	logger.Debug(fmt.Sprintf("Starting page workers: count=%d pages=%d", numWorkers, total), true)

	jobs, results := make(chan int, total), make(chan buildResult, total)

	var wg sync.WaitGroup
	r.startWorkers(ctx, rctx, doc, jobs, results, numWorkers, &wg)
	if err := r.feedJobs(ctx, total, jobs); err != nil {
		close(jobs)
		go func() {
			wg.Wait()
			close(results)
		}()
		for range results {
		}
		return nil, err
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	built := make([]*builtPage, total)
	var firstErr error
	for res := range results {
		if res.err != nil {
			logger.Debug(fmt.Sprintf("Page build failed: page=%d err=%v", res.index, res.err), true)
			if firstErr == nil {
				firstErr = fmt.Errorf("page %d: %w", res.index, res.err)
			}
			continue
		}
		built[res.index] = res.page
	}
	if firstErr != nil {
		return nil, firstErr
	}

	// The filter pass is a single sequential sweep over the whole
	// document's flattened text, pages concatenated in order, so a
	// match may span a page boundary.
	var text strings.Builder
	var posmap []posEntry
	for _, bp := range built {
		text.WriteString(bp.text)
		posmap = append(posmap, bp.posmap...)
	}
	applyFilters(text.String(), posmap, filters)

	streams := make([]PageStream, total)
	for i, bp := range built {
		data, err := serializePage(rctx, bp.tokens)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		streams[i] = PageStream{Data: data, Length: len(data)}
	}
	return streams, nil
}

func (r *redactor) startWorkers(ctx context.Context, rctx *runContext, doc *Document, jobs <-chan int, results chan<- buildResult, numWorkers int, wg *sync.WaitGroup) {
	for w := 1; w <= numWorkers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results <- buildResult{i, nil, err}
					continue
				}
				bp, err := buildTextLayer(rctx, doc.Pages[i])
				results <- buildResult{i, bp, err}
				if err != nil {
					logger.Debug(fmt.Sprintf("Worker: page build error: worker_id=%d page=%d err=%v", id, i, err), true)
				} else {
					logger.Debug(fmt.Sprintf("Worker: page built: worker_id=%d page=%d tokens=%d", id, i, len(bp.posmap)), true)
				}
			}
		}(w)
	}
}

func (r *redactor) feedJobs(ctx context.Context, total int, jobs chan<- int) error {
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			logger.Debug("Context cancelled while feeding page jobs", true)
			return ctx.Err()
		case jobs <- i:
		}
	}
	return nil
}

func (r *redactor) acquireSlot(ctx context.Context) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire slot: %w", err)
	}
	logger.Debug("Slot acquired successfully", true)
	return nil
}

func (r *redactor) adjustWorkerCount(maxWorkers, total int) int {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if maxWorkers > runtime.NumCPU() {
		maxWorkers = runtime.NumCPU()
	}
	if maxWorkers > total {
		maxWorkers = total
	}
	return maxWorkers
}
