package out

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"

	"intervals/internal/modules/peersync/domain"
	syncout "intervals/internal/modules/peersync/port/out"
	"intervals/internal/platform/clock"
	"intervals/internal/platform/filestore"
)

// FileDeviceStore keeps the device identity and the companion pairing under
// <stateDir>/device.
type FileDeviceStore struct {
	clock      clock.Clock
	identities *filestore.Store[domain.DeviceIdentity]
	pairings   *filestore.Store[domain.Pairing]
}

func NewFileDeviceStore(stateDir string, clk clock.Clock, logger hclog.Logger) syncout.DeviceStore {
	dir := filepath.Join(stateDir, "device")
	return &FileDeviceStore{
		clock:      clk,
		identities: filestore.New[domain.DeviceIdentity](dir, filestore.Kind{Name: "identity", FileName: "identity.json"}, nil, logger),
		pairings:   filestore.New[domain.Pairing](dir, filestore.Kind{Name: "pairing", FileName: "pairing.json"}, nil, logger),
	}
}

// Init creates the device identity once. Later calls return the stored one.
func (s *FileDeviceStore) Init(ctx context.Context) (domain.DeviceIdentity, error) {
	existing, err := s.LoadIdentity(ctx)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrDeviceNotInit) {
		return domain.DeviceIdentity{}, err
	}
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return domain.DeviceIdentity{}, fmt.Errorf("generate device key: %w", err)
	}
	libp2pPub, err := crypto.UnmarshalEd25519PublicKey(pub)
	if err != nil {
		return domain.DeviceIdentity{}, fmt.Errorf("convert device key: %w", err)
	}
	peerID, err := peer.IDFromPublicKey(libp2pPub)
	if err != nil {
		return domain.DeviceIdentity{}, fmt.Errorf("derive peer id: %w", err)
	}
	identity := domain.DeviceIdentity{
		PeerID:     peerID.String(),
		PrivateKey: base64.StdEncoding.EncodeToString(priv),
		CreatedAt:  s.clock.Now(),
	}
	if err := s.identities.Add(ctx, identity); err != nil {
		return domain.DeviceIdentity{}, err
	}
	return identity, nil
}

func (s *FileDeviceStore) LoadIdentity(ctx context.Context) (domain.DeviceIdentity, error) {
	items, err := s.identities.Load(ctx)
	if err != nil {
		return domain.DeviceIdentity{}, err
	}
	if len(items) == 0 || strings.TrimSpace(items[0].PrivateKey) == "" {
		return domain.DeviceIdentity{}, domain.ErrDeviceNotInit
	}
	return items[0], nil
}

// Pair replaces the stored companion with the peer at address, which must be
// a multiaddr that ends in /p2p/<peer id>.
func (s *FileDeviceStore) Pair(ctx context.Context, address string) (domain.Pairing, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Pairing{}, domain.ErrInvalidPeerAddress
	}
	addr, err := multiaddr.NewMultiaddr(address)
	if err != nil {
		return domain.Pairing{}, fmt.Errorf("%w: %v", domain.ErrInvalidPeerAddress, err)
	}
	info, err := peer.AddrInfoFromP2pAddr(addr)
	if err != nil {
		return domain.Pairing{}, fmt.Errorf("%w: %v", domain.ErrInvalidPeerAddress, err)
	}
	pairing := domain.Pairing{PeerID: info.ID.String(), Address: address, PairedAt: s.clock.Now()}
	if err := s.pairings.DeleteAll(ctx); err != nil {
		return domain.Pairing{}, err
	}
	if err := s.pairings.Add(ctx, pairing); err != nil {
		return domain.Pairing{}, err
	}
	return pairing, nil
}

func (s *FileDeviceStore) LoadPairing(ctx context.Context) (domain.Pairing, error) {
	items, err := s.pairings.Load(ctx)
	if err != nil {
		return domain.Pairing{}, err
	}
	if len(items) == 0 {
		return domain.Pairing{}, domain.ErrNotPaired
	}
	return items[0], nil
}

func (s *FileDeviceStore) Unpair(ctx context.Context) error {
	return s.pairings.DeleteAll(ctx)
}
