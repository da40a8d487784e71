// Command noise-demo drives one side of a Noise handshake over a TCP
// connection and exchanges a single transport message, for manually
// exercising the noise package end to end.
package main

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/noisecore/noise"
	"github.com/noisecore/noise/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file (see internal/config.DemoConfig)")
		listen     = flag.String("listen", "", "address to listen on, acting as the responder")
		connect    = flag.String("connect", "", "address to dial, acting as the initiator")
		pattern    = flag.String("pattern", "", "handshake pattern name (e.g. XX, NN, IK)")
		dh         = flag.String("dh", "", "DH function name (25519)")
		cipherName = flag.String("cipher", "", "cipher name (ChaChaPoly, AESGCM)")
		hashName   = flag.String("hash", "", "hash name (SHA256, SHA512, BLAKE2s, BLAKE2b)")
		staticHex  = flag.String("static", "", "hex-encoded 32-byte static private key; random if empty")
		peerHex    = flag.String("peer-static", "", "hex-encoded 32-byte peer static public key")
		pskHex     = flag.String("psk", "", "hex-encoded 32-byte pre-shared key")
		logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error")
	)
	flag.Parse()

	cfg := config.DefaultDemoConfig()
	if *configPath != "" {
		loaded, err := config.LoadDemoConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "noise-demo:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	applyFlagOverrides(cfg, *listen, *connect, *pattern, *dh, *cipherName, *hashName, *staticHex, *peerHex, *pskHex, *logLevel)

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	if err := run(cfg, log); err != nil {
		log.Error("noise-demo failed", "err", err)
		os.Exit(1)
	}
}

func applyFlagOverrides(cfg *config.DemoConfig, listen, connect, pattern, dh, cipherName, hashName, staticHex, peerHex, pskHex, logLevel string) {
	if listen != "" {
		cfg.Listen = listen
	}
	if connect != "" {
		cfg.Connect = connect
	}
	if pattern != "" {
		cfg.Pattern = pattern
	}
	if dh != "" {
		cfg.DH = dh
	}
	if cipherName != "" {
		cfg.Cipher = cipherName
	}
	if hashName != "" {
		cfg.Hash = hashName
	}
	if staticHex != "" {
		cfg.StaticKeyHex = staticHex
	}
	if peerHex != "" {
		cfg.PeerKeyHex = peerHex
	}
	if pskHex != "" {
		cfg.PSKHex = pskHex
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildCipherSuite(cfg *config.DemoConfig) (noise.CipherSuite, error) {
	var dhFunc noise.DHFunc
	switch cfg.DH {
	case "", "25519":
		dhFunc = noise.DH25519{}
	default:
		return nil, fmt.Errorf("unknown dh function %q", cfg.DH)
	}

	var cipherFunc noise.CipherFunc
	switch cfg.Cipher {
	case "", "ChaChaPoly":
		cipherFunc = noise.CipherChaChaPoly{}
	case "AESGCM":
		cipherFunc = noise.CipherAESGCM{}
	default:
		return nil, fmt.Errorf("unknown cipher function %q", cfg.Cipher)
	}

	var hashFunc noise.HashFunc
	switch cfg.Hash {
	case "", "SHA256":
		hashFunc = noise.HashSHA256{}
	case "SHA512":
		hashFunc = noise.HashSHA512{}
	case "BLAKE2s":
		hashFunc = noise.HashBLAKE2s{}
	case "BLAKE2b":
		hashFunc = noise.HashBLAKE2b{}
	default:
		return nil, fmt.Errorf("unknown hash function %q", cfg.Hash)
	}

	return noise.NewCipherSuite(dhFunc, cipherFunc, hashFunc), nil
}

func run(cfg *config.DemoConfig, log *slog.Logger) error {
	pattern, ok := noise.AllPatterns[cfg.Pattern]
	if !ok {
		return fmt.Errorf("unknown handshake pattern %q", cfg.Pattern)
	}
	suite, err := buildCipherSuite(cfg)
	if err != nil {
		return err
	}

	hsConfig := noise.Config{
		CipherSuite: suite,
		Pattern:     pattern,
		Prologue:    []byte("noise-demo-v1"),
	}
	if cfg.StaticKeyHex != "" {
		priv, err := decodeHexKey(cfg.StaticKeyHex)
		if err != nil {
			return errors.Wrap(err, "static key")
		}
		hsConfig.StaticKeypair, err = staticKeypairFromPrivate(suite, priv)
		if err != nil {
			return errors.Wrap(err, "static key")
		}
	} else if pattern.NeedsLocalStatic() {
		kp, err := suite.GenerateKeypair(rand.Reader)
		if err != nil {
			return errors.Wrap(err, "generate static key")
		}
		hsConfig.StaticKeypair = kp
	}
	if cfg.PeerKeyHex != "" {
		peer, err := hex.DecodeString(cfg.PeerKeyHex)
		if err != nil {
			return errors.Wrap(err, "peer static key")
		}
		hsConfig.PeerStatic = peer
	}
	if cfg.PSKHex != "" {
		psk, err := hex.DecodeString(cfg.PSKHex)
		if err != nil {
			return errors.Wrap(err, "psk")
		}
		hsConfig.PresharedKeys = [][]byte{psk}
	}

	switch {
	case cfg.Connect != "":
		return runInitiator(cfg, hsConfig, log)
	case cfg.Listen != "":
		return runResponder(cfg, hsConfig, log)
	default:
		return fmt.Errorf("either -listen or -connect must be given")
	}
}

func staticKeypairFromPrivate(suite noise.CipherSuite, priv *noise.Sensitive) (noise.DHKey, error) {
	// X25519 public keys are derived via DH against the curve's base
	// point; DH25519.DH accepts any 32-byte point, including the
	// well-known base point, for this purpose.
	basePoint := make([]byte, 32)
	basePoint[0] = 9
	pub, err := suite.DH(priv, basePoint)
	if err != nil {
		return noise.DHKey{}, err
	}
	return noise.DHKey{Private: priv, Public: pub}, nil
}

func decodeHexKey(s string) (*noise.Sensitive, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return noise.SensitiveFromBytes(b), nil
}

func runInitiator(cfg *config.DemoConfig, hsConfig noise.Config, log *slog.Logger) error {
	conn, err := net.Dial("tcp", cfg.Connect)
	if err != nil {
		return err
	}
	defer conn.Close()

	hsConfig.Initiator = true
	send, recv, err := runHandshakeOverConn(conn, hsConfig, log)
	if err != nil {
		return err
	}

	ct, err := send.EncryptWithAd(nil, nil, []byte("hello from noise-demo initiator"))
	if err != nil {
		return err
	}
	if err := writeFramed(conn, ct); err != nil {
		return err
	}
	reply, err := readFramed(conn)
	if err != nil {
		return err
	}
	pt, err := recv.DecryptWithAd(nil, nil, reply)
	if err != nil {
		return err
	}
	log.Info("received transport message", "payload", string(pt))
	return nil
}

func runResponder(cfg *config.DemoConfig, hsConfig noise.Config, log *slog.Logger) error {
	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}
	defer ln.Close()
	log.Info("listening", "addr", ln.Addr())

	conn, err := ln.Accept()
	if err != nil {
		return err
	}
	defer conn.Close()

	hsConfig.Initiator = false
	send, recv, err := runHandshakeOverConn(conn, hsConfig, log)
	if err != nil {
		return err
	}

	msg, err := readFramed(conn)
	if err != nil {
		return err
	}
	pt, err := recv.DecryptWithAd(nil, nil, msg)
	if err != nil {
		return err
	}
	log.Info("received transport message", "payload", string(pt))

	ct, err := send.EncryptWithAd(nil, nil, []byte("hello from noise-demo responder"))
	if err != nil {
		return err
	}
	return writeFramed(conn, ct)
}

// runHandshakeOverConn drives hsConfig.Pattern to completion over conn,
// exchanging length-prefixed handshake messages, and returns this side's
// transport send/receive CipherStates.
func runHandshakeOverConn(conn net.Conn, hsConfig noise.Config, log *slog.Logger) (send, recv *noise.CipherState, err error) {
	hs, err := noise.NewHandshakeState(hsConfig)
	if err != nil {
		return nil, nil, err
	}

	isInitiator := hsConfig.Initiator
	var cs1, cs2 *noise.CipherState
	writeTurn := isInitiator
	for !hs.IsHandshakeFinished() {
		if writeTurn {
			msg, c1, c2, err := hs.WriteMessage(nil, nil)
			if err != nil {
				return nil, nil, err
			}
			if err := writeFramed(conn, msg); err != nil {
				return nil, nil, err
			}
			cs1, cs2 = c1, c2
		} else {
			msg, err := readFramed(conn)
			if err != nil {
				return nil, nil, err
			}
			_, c1, c2, err := hs.ReadMessage(nil, msg)
			if err != nil {
				return nil, nil, err
			}
			cs1, cs2 = c1, c2
		}
		writeTurn = !writeTurn
	}
	log.Info("handshake complete", "hash", hex.EncodeToString(hs.GetHandshakeHash()))

	if isInitiator {
		return cs1, cs2, nil
	}
	return cs2, cs1, nil
}

func writeFramed(w io.Writer, msg []byte) error {
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(msg)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(msg)
	return err
}

func readFramed(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	msg := make([]byte, binary.BigEndian.Uint16(lenBuf[:]))
	if _, err := io.ReadFull(r, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
