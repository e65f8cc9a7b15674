package domain

import "time"

// DeviceIdentity is the persisted key pair that fixes this device's peer id.
type DeviceIdentity struct {
	PeerID     string    `json:"peer_id"`
	PrivateKey string    `json:"private_key"`
	CreatedAt  time.Time `json:"created_at"`
}

// Pairing is the companion this device syncs with. Address is a multiaddr
// ending in /p2p/<peer id>.
type Pairing struct {
	PeerID   string    `json:"peer_id"`
	Address  string    `json:"address"`
	PairedAt time.Time `json:"paired_at"`
}

func (p Pairing) EntityID() string {
	return p.PeerID
}

type Counters struct {
	Sent           int64
	SendFailures   int64
	Received       int64
	DecodeErrors   int64
	ImportFailures int64
	Reactivations  int64
}

type Status struct {
	State       ConnectionState
	Reachable   bool
	LastSyncAt  time.Time
	ListenAddrs []string
	Counters    Counters
}

func (d DeviceIdentity) EntityID() string {
	return d.PeerID
}
