package assets

import (
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/exp/maps"

	"github.com/spaghettifunk/anima-dx12/engine/assets/loaders"
	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

const eventBufferSize = 64

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrClosed        = errors.New("asset manager already closed")
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetEvent reports a change of a known asset on disk.
type AssetEvent struct {
	Path string
	Type metadata.ResourceType
	// Removed is set when the file was deleted or renamed away.
	Removed bool
}

type AssetManager struct {
	baseDir string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	started  bool
	events   chan AssetEvent
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		events:   make(chan AssetEvent, eventBufferSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

func (am *AssetManager) Initialize(assetsDir string) error {
	if am.isClosed {
		return ErrClosed
	}
	base, err := filepath.Abs(assetsDir)
	if err != nil {
		return errors.Wrapf(err, "resolving assets directory %s", assetsDir)
	}
	am.baseDir = base

	// Register loaders
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeTexture, &loaders.TextureLoader{})
	am.registerLoader(metadata.ResourceTypeBinary, &loaders.BinaryLoader{})

	if err := am.addRecursive(base); err != nil {
		return err
	}
	core.LogInfo("asset manager watching %s (%d assets)", base, len(am.assets))

	am.started = true
	go am.start()
	return nil
}

// Shutdown stops the watcher and closes the event channel.
func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	if !am.started {
		close(am.events)
		return am.fsnotify.Close()
	}
	<-am.stopped
	return nil
}

// Events delivers changes to known assets. It is closed by Shutdown.
func (am *AssetManager) Events() <-chan AssetEvent {
	return am.events
}

func (am *AssetManager) BaseDir() string {
	return am.baseDir
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return ErrClosed
	}
	return am.watchRecursive(name)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// AssetPath returns where an asset of the given name and type lives.
func (am *AssetManager) AssetPath(name string, resourceType metadata.ResourceType) (string, error) {
	switch resourceType {
	case metadata.ResourceTypeShader:
		return filepath.Join(am.baseDir, "shaders", name+".shadercfg"), nil
	case metadata.ResourceTypeTexture:
		return filepath.Join(am.baseDir, "textures", name+".texcfg"), nil
	case metadata.ResourceTypeBinary:
		return filepath.Join(am.baseDir, "shaders", name), nil
	}
	return "", errors.Newf("unknown resource type %s", resourceType)
}

// LoadAsset loads an asset by name with the loader of its type.
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	path, err := am.AssetPath(name, resourceType)
	if err != nil {
		return nil, err
	}
	return am.LoadAssetPath(path, params)
}

// LoadAssetPath loads a known asset from its full path.
func (am *AssetManager) LoadAssetPath(path string, params interface{}) (*metadata.Resource, error) {
	am.mutex.Lock()
	asset, exists := am.assets[path]
	if exists {
		// Load or reload asset from disk
		asset.LastLoaded = time.Now()
		am.assets[path] = asset
	}
	am.mutex.Unlock()
	if !exists {
		return nil, errors.Wrapf(ErrAssetNotFound, "%s", path)
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, errors.Newf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(path, asset.Type, params)
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	if asset == nil {
		return nil
	}
	loader, ok := am.loaders[asset.Type]
	if !ok {
		return errors.Newf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Unload(asset)
}

// Assets lists the known assets of a type, sorted by path.
func (am *AssetManager) Assets(resourceType metadata.ResourceType) []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	paths := maps.Keys(am.assets)
	out := paths[:0]
	for _, p := range paths {
		if am.assets[p].Type == resourceType {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	watchErrors := am.fsnotify.Errors
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				close(am.events)
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogWarn("unable to watch %s: %s", e.Name, err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if t := am.handleFileEvent(e.Name); t != metadata.ResourceTypeNone {
					am.emit(AssetEvent{Path: e.Name, Type: t})
				}
			}
			// A deleted path can not be stat'ed, so it is dropped both from
			// the index and from the watch list.
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if t := am.removeAsset(e.Name); t != metadata.ResourceTypeNone {
					am.emit(AssetEvent{Path: e.Name, Type: t, Removed: true})
				}
				_ = am.fsnotify.Remove(e.Name)
			}

		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			if err := am.fsnotify.Close(); err != nil {
				core.LogWarn("closing asset watcher: %s", err)
			}
			close(am.events)
			return
		}
	}
}

// emit never blocks the watch loop. Events are dropped when nobody drains
// the channel.
func (am *AssetManager) emit(e AssetEvent) {
	select {
	case am.events <- e:
	default:
		core.LogWarn("asset event queue full, dropping change of %s", e.Path)
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files it finds.
func (am *AssetManager) watchRecursive(path string) error {
	err := filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
	return errors.Wrapf(err, "watching %s", path)
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) metadata.ResourceType {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return assetType
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path: path,
		Type: assetType,
	}
	return assetType
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) metadata.ResourceType {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	info, ok := am.assets[path]
	if !ok {
		return metadata.ResourceTypeNone
	}
	delete(am.assets, path)
	return info.Type
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".shadercfg":
		return metadata.ResourceTypeShader
	case ".texcfg":
		return metadata.ResourceTypeTexture
	case ".cso":
		return metadata.ResourceTypeBinary
	default:
		return metadata.ResourceTypeNone
	}
}
