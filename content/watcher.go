// 内容文件变更监听器。
//
// 基于修改时间轮询触发重载回调。
package content

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/npcflow/types"
)

// Watcher polls a content file and hands freshly parsed databases to a
// callback, typically service.Service.Reload. A reload while a
// conversation is active hard-resets the engine without an end event; the
// watcher exists for authoring iteration, not for live sessions.
type Watcher struct {
	path     string
	interval time.Duration
	onReload func(*types.Database)
	logger   *zap.Logger

	stopOnce sync.Once
	stopChan chan struct{}

	// 轮询的最后修改时间
	lastMod time.Time
}

// NewWatcher creates a watcher for path. onReload is called from the
// watcher's own goroutine with each successfully parsed database.
func NewWatcher(path string, interval time.Duration, onReload func(*types.Database), logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		interval: interval,
		onReload: onReload,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins polling in a background goroutine.
func (w *Watcher) Start() {
	if info, err := os.Stat(w.path); err == nil {
		w.lastMod = info.ModTime()
	}
	go w.loop()
}

// Stop terminates polling. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
}

func (w *Watcher) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.poll()
		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) poll() {
	info, err := os.Stat(w.path)
	if err != nil {
		// 文件暂时不可见（编辑器原子替换等），下一轮再试
		return
	}
	if !info.ModTime().After(w.lastMod) {
		return
	}
	w.lastMod = info.ModTime()

	db, err := Load(w.path)
	if err != nil {
		// 解析失败保留旧内容
		w.logger.Warn("content reload failed, keeping previous database",
			zap.String("path", w.path),
			zap.Error(err))
		return
	}

	w.logger.Info("content file changed, reloading",
		zap.String("path", w.path),
		zap.Int("conversations", len(db.Conversations)))
	w.onReload(db)
}
