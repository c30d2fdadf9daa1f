package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RecordIDHexLen is the length of a normalized ledger record id: "0x" plus
// 32 bytes of hex. The ledger contract constructor takes the id as a
// fixed-width binary argument, so every derived id must land on this form.
const RecordIDHexLen = 66

// DeriveRecordID derives the ledger record id from the owning patient, the
// content hash and the upload timestamp. The derivation never fails: an empty
// content hash falls back to deriving from the timestamp alone.
func DeriveRecordID(patientID, contentHash string, ts time.Time) string {
	if contentHash == "" {
		return NormalizeRecordID(strconv.FormatInt(ts.UnixNano(), 10))
	}
	raw := fmt.Sprintf("%s:%s:%d", patientID, contentHash, ts.UnixNano())
	return NormalizeRecordID(raw)
}

// NormalizeRecordID forces a value into the 32-byte hex form. A value already
// in that form passes through unchanged; anything else is hashed into it.
func NormalizeRecordID(raw string) string {
	if IsRecordIDHex(raw) {
		return raw
	}
	sum := sha256.Sum256([]byte(raw))
	return "0x" + hex.EncodeToString(sum[:])
}

// IsRecordIDHex reports whether s is a 66-character 0x-prefixed hex string
// encoding exactly 32 bytes.
func IsRecordIDHex(s string) bool {
	if len(s) != RecordIDHexLen || !strings.HasPrefix(s, "0x") {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}
