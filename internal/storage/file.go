package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const fileDocumentVersion = "1.0"

type fileDocument struct {
	Version   string            `yaml:"version"`
	Timestamp time.Time         `yaml:"timestamp"`
	Values    map[string]string `yaml:"values"`
}

func newFileDocument() fileDocument {
	return fileDocument{
		Version:   fileDocumentVersion,
		Timestamp: now(),
		Values:    make(map[string]string),
	}
}

// FileStore persists values as a single YAML document per namespace, e.g.
// ~/.config/urbanflow/localhost_8000.yaml. Every call re-reads the file so
// separate processes observe each other's writes.
type FileStore struct {
	lock sync.Mutex
	path string
}

func NewFileStore(dir string, namespace string) (*FileStore, error) {

	if len(dir) == 0 {
		return nil, fmt.Errorf("file store requires a directory")
	}

	if len(namespace) == 0 {
		namespace = "default"
	}

	// Only the owner can read stored tokens
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FileStore{
		path: filepath.Join(dir, fmt.Sprintf("%s.yaml", namespace)),
	}, nil
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	document, err := f.load()
	if err != nil {
		return "", false, err
	}

	value, ok := document.Values[key]
	return value, ok, nil
}

func (f *FileStore) Set(_ context.Context, key string, value string) error {

	logrus.WithFields(logrus.Fields{
		"path": f.path,
		"key":  key,
	}).Debugln("Writing value to file store")

	f.lock.Lock()
	defer f.lock.Unlock()

	document, err := f.load()
	if err != nil {
		return err
	}

	document.Values[key] = value
	return f.commit(document)
}

func (f *FileStore) Delete(_ context.Context, key string) error {

	logrus.WithFields(logrus.Fields{
		"path": f.path,
		"key":  key,
	}).Debugln("Removing value from file store")

	f.lock.Lock()
	defer f.lock.Unlock()

	document, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := document.Values[key]; !ok {
		return nil
	}

	delete(document.Values, key)
	return f.commit(document)
}

func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) load() (fileDocument, error) {

	file, err := os.Open(f.path)
	if os.IsNotExist(err) {
		return newFileDocument(), nil
	} else if err != nil {
		return fileDocument{}, fmt.Errorf("failed to open storage file: %w", err)
	}
	defer file.Close()

	var document fileDocument
	err = yaml.NewDecoder(file).Decode(&document)

	if err == io.EOF {
		return newFileDocument(), nil
	} else if err != nil {
		// A corrupt file is treated as empty rather than locking the user out
		logrus.WithError(err).Errorf("Failed to parse storage file %s, reinitializing", f.path)
		return newFileDocument(), nil
	}

	if document.Values == nil {
		document.Values = make(map[string]string)
	}

	return document, nil
}

func (f *FileStore) commit(document fileDocument) error {

	file, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open storage file: %w", err)
	}
	defer file.Close()

	document.Version = fileDocumentVersion
	document.Timestamp = now()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)

	if err := encoder.Encode(document); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}

	return encoder.Close()
}
