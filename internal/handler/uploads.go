package handler

import "sync"

// pendingUpload is a receipt image waiting to be analyzed.
type pendingUpload struct {
	data     []byte
	mimeType string
}

// uploadStore holds at most one pending image per user. The image
// stays pending across analyses (re-analysis is allowed) and is
// dropped on logout or when replaced by a new upload.
type uploadStore struct {
	mu      sync.Mutex
	pending map[string]pendingUpload
}

func newUploadStore() *uploadStore {
	return &uploadStore{pending: make(map[string]pendingUpload)}
}

func (u *uploadStore) set(username string, data []byte, mimeType string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pending[username] = pendingUpload{data: data, mimeType: mimeType}
}

func (u *uploadStore) get(username string) (pendingUpload, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.pending[username]
	return p, ok
}

func (u *uploadStore) clear(username string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.pending, username)
}
