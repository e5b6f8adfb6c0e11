// Package fragment reassembles oversize blocks out of fixed-size
// fragments. It is a peer to the reliable channel, not a caller of it:
// large blocks never ride the reliable channel, and the
// reliable channel never invokes this package.
package fragment

import "errors"

// ErrBlockTooLarge is latched the first time a fragment claims a block
// size beyond maxBlockSize. Once latched, all further fragments are
// ignored until Clear.
var ErrBlockTooLarge = errors.New("fragment: block size exceeds maximum")

// Receiver reassembles one block at a time from fragments of a fixed
// fragmentSize. Reuse across blocks via Clear rather than constructing a
// new Receiver, so the backing buffer is allocated once.
type Receiver struct {
	fragmentSize int
	maxBlockSize int
	maxFragments int

	ackFragment func(fragmentID int)

	buf          []byte
	blockSize    int
	numFragments int
	received     []bool
	numReceived  int
	err          error
}

// NewReceiver returns a Receiver for blocks up to maxBlockSize bytes, split
// into fragments of fragmentSize bytes. ackFragment is invoked once per
// well-formed fragment received (including duplicates), mirroring
// DataBlockReceiver's unconditional SendAck behavior.
func NewReceiver(fragmentSize, maxBlockSize int, ackFragment func(fragmentID int)) *Receiver {
	if fragmentSize <= 0 || maxBlockSize <= 0 {
		panic("fragment: fragmentSize and maxBlockSize must be positive")
	}
	maxFragments := (maxBlockSize + fragmentSize - 1) / fragmentSize
	return &Receiver{
		fragmentSize: fragmentSize,
		maxBlockSize: maxBlockSize,
		maxFragments: maxFragments,
		ackFragment:  ackFragment,
		buf:          make([]byte, maxBlockSize),
		received:     make([]bool, maxFragments),
	}
}

// ProcessFragment validates and, if well-formed, commits one fragment.
// Malformed fragments (bad id, inconsistent size, overflow) are silently
// ignored except for the sticky ErrBlockTooLarge case, matching
// DataBlockReceiver's behavior of never propagating per-fragment errors
// except the latched one.
func (r *Receiver) ProcessFragment(blockSize, numFragments, fragmentID, fragmentBytes int, fragmentData []byte) {
	if r.err != nil {
		return
	}
	if blockSize > r.maxBlockSize {
		r.err = ErrBlockTooLarge
		return
	}
	if r.blockSize == 0 && r.numReceived == 0 {
		r.blockSize = blockSize
		r.numFragments = numFragments
	}
	if blockSize != r.blockSize || numFragments != r.numFragments {
		// a peer changed its mind mid-transfer; ignore rather than corrupt state.
		return
	}
	if numFragments <= 0 || numFragments > r.maxFragments {
		return
	}
	if fragmentID < 0 || fragmentID >= numFragments {
		return
	}
	start := fragmentID * r.fragmentSize
	if start+fragmentBytes > blockSize {
		return
	}
	if fragmentBytes != len(fragmentData) {
		return
	}

	if r.ackFragment != nil {
		r.ackFragment(fragmentID)
	}

	if r.received[fragmentID] {
		return
	}
	copy(r.buf[start:start+fragmentBytes], fragmentData)
	r.received[fragmentID] = true
	r.numReceived++
}

// Err returns the latched error, if any.
func (r *Receiver) Err() error {
	return r.err
}

// Block returns the assembled block and true once every fragment has
// arrived and a non-empty block size has been established.
func (r *Receiver) Block() ([]byte, bool) {
	if r.blockSize == 0 || r.numFragments == 0 {
		return nil, false
	}
	if r.numReceived != r.numFragments {
		return nil, false
	}
	return r.buf[:r.blockSize], true
}

// Clear resets per-block state for reuse, without reallocating the
// backing buffer.
func (r *Receiver) Clear() {
	r.blockSize = 0
	r.numFragments = 0
	r.numReceived = 0
	r.err = nil
	for i := range r.received {
		r.received[i] = false
	}
}
