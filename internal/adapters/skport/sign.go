package skport

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	platformID     = "3"
	apiVersionName = "1.0.0"
)

// SignV1 signs a request carrying only a timestamp and the account cred.
// The md5 digest is a compatibility requirement of the remote service,
// not a security boundary.
func SignV1(timestamp, cred string) string {
	sum := md5.Sum([]byte("timestamp=" + timestamp + "&cred=" + cred))
	return hex.EncodeToString(sum[:])
}

// SignV2 signs the canonical string path+body+timestamp+headerJSON with
// an HMAC-SHA256 keyed by the account salt, then digests the hex HMAC
// with md5. The header JSON field order is fixed by the wire protocol.
// body must be the exact serialized payload bytes, empty for bodyless
// requests.
func SignV2(path, body, timestamp, salt string) string {
	headerJSON := fmt.Sprintf(
		`{"platform":"%s","timestamp":"%s","dId":"","vName":"%s"}`,
		platformID, timestamp, apiVersionName,
	)
	canonical := path + body + timestamp + headerJSON

	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(canonical))
	hexMAC := hex.EncodeToString(mac.Sum(nil))

	sum := md5.Sum([]byte(hexMAC))
	return hex.EncodeToString(sum[:])
}
