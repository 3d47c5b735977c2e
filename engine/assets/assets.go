// Package assets loads game files and reloads them when they change on disk.
package assets

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/tristris/engine/core"
)

type AssetType uint8

const (
	ASSET_TYPE_NONE AssetType = iota
	ASSET_TYPE_CONFIG
	ASSET_TYPE_DEFINITION
	ASSET_TYPE_BITMAP_FONT
	ASSET_TYPE_SYSTEM_FONT
)

var ErrManagerClosed = errors.New("asset manager already closed")

type AssetInfo struct {
	Path       string
	Type       AssetType
	LastLoaded time.Time
}

// ReloadFunc receives the freshly loaded asset, or the error that prevented
// loading it. It runs on the watcher goroutine.
type ReloadFunc func(data interface{}, err error)

type watch struct {
	assetType AssetType
	onReload  ReloadFunc
}

type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[AssetType]Loader
	watches map[string][]watch
	dirs    map[string]int

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[AssetType]Loader),
		watches:  make(map[string][]watch),
		dirs:     make(map[string]int),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go am.start()
	return am, nil
}

// RegisterLoader sets the loader used for assetType.
func (am *AssetManager) RegisterLoader(assetType AssetType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// LoadAsset loads path with the loader registered for assetType.
func (am *AssetManager) LoadAsset(path string, assetType AssetType) (interface{}, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	am.mutex.RLock()
	loader, ok := am.loaders[assetType]
	am.mutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no loader registered for asset type: %d", assetType)
	}

	data, err := loader.Load(abs)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	am.assets[abs] = AssetInfo{
		Path:       abs,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()
	return data, nil
}

// Asset returns what is known about a loaded asset.
func (am *AssetManager) Asset(path string) (AssetInfo, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return AssetInfo{}, false
	}
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[abs]
	return info, ok
}

// Watch reloads path whenever it is written or recreated and hands the result
// to onReload. The parent directory is watched so editors that replace the
// file on save are handled.
func (am *AssetManager) Watch(path string, assetType AssetType, onReload ReloadFunc) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	if am.isClosed {
		return ErrManagerClosed
	}
	if _, ok := am.loaders[assetType]; !ok {
		return fmt.Errorf("no loader registered for asset type: %d", assetType)
	}

	dir := filepath.Dir(abs)
	if am.dirs[dir] == 0 {
		if err := am.fsnotify.Add(dir); err != nil {
			return err
		}
	}
	am.dirs[dir]++
	am.watches[abs] = append(am.watches[abs], watch{assetType: assetType, onReload: onReload})
	core.LogDebug("watching %s", abs)
	return nil
}

// Shutdown stops the watcher goroutine and releases the watches.
func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	<-am.stopped
	return nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// Reload the file if anything watches it.
func (am *AssetManager) handleFileEvent(path string) {
	am.mutex.RLock()
	watches := append([]watch(nil), am.watches[path]...)
	am.mutex.RUnlock()

	for _, w := range watches {
		data, err := am.LoadAsset(path, w.assetType)
		if err != nil {
			core.LogWarn("failed to reload %s: %s", path, err)
		} else {
			core.LogInfo("reloaded %s", path)
		}
		w.onReload(data, err)
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}
