package tlsroots

import (
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/scenelink/internal/telemetry/logger"
)

// DefaultDebounce collapses the several events an editor or cert-manager
// emits for one rotation.
const DefaultDebounce = 500 * time.Millisecond

// Watcher holds a key pair and reloads it when the files change. A failed
// reload keeps serving the previous pair.
type Watcher struct {
	certFile string
	keyFile  string
	log      logger.Logger
	debounce time.Duration

	mu      sync.RWMutex
	cert    *tls.Certificate
	reloads int

	timerMu sync.Mutex
	timer   *time.Timer

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets the logger for the watcher.
func WithLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) { w.log = l }
}

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher loads the key pair. Call StartAsync to follow changes.
func NewWatcher(certFile, keyFile string, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		certFile: certFile,
		keyFile:  keyFile,
		log:      logger.Component("tls"),
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}
	return w, nil
}

// StartAsync watches the directories holding the key pair, so renames
// into place are seen.
func (w *Watcher) StartAsync() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	dirs := map[string]struct{}{filepath.Dir(w.certFile): {}, filepath.Dir(w.keyFile): {}}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return fmt.Errorf("tlsroots: watch %s: %w", dir, err)
		}
	}
	w.watcher = fw
	go w.loop()
	w.log.Info("certificate watcher started", "cert_file", w.certFile, "key_file", w.keyFile)
	return nil
}

func (w *Watcher) loop() {
	names := map[string]struct{}{filepath.Clean(w.certFile): {}, filepath.Clean(w.keyFile): {}}
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if _, mine := names[filepath.Clean(event.Name)]; !mine {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("certificate watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// schedule reloads once the files have been quiet for the debounce period.
func (w *Watcher) schedule() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if err := w.reload(); err != nil {
			w.log.Error("certificate reload failed", "cert_file", w.certFile, "error", err)
		}
	})
}

// Stop stops watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.timerMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.timerMu.Unlock()
		if w.watcher != nil {
			err = w.watcher.Close()
		}
	})
	return err
}

// Reloads returns how many times the key pair has been loaded.
func (w *Watcher) Reloads() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.reloads
}

// GetCertificate implements tls.Config.GetCertificate.
func (w *Watcher) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cert, nil
}

// GetClientCertificate implements tls.Config.GetClientCertificate.
func (w *Watcher) GetClientCertificate(*tls.CertificateRequestInfo) (*tls.Certificate, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cert, nil
}

func (w *Watcher) reload() error {
	cert, err := tls.LoadX509KeyPair(w.certFile, w.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}
	w.mu.Lock()
	w.cert = &cert
	w.reloads++
	n := w.reloads
	w.mu.Unlock()
	if n > 1 {
		w.log.Info("certificate reloaded", "cert_file", w.certFile)
	}
	return nil
}
