package models

type AccessStatus string

const (
	AccessAuthorized   AccessStatus = "AUTHORIZED"
	AccessUnauthorized AccessStatus = "UNAUTHORIZED"
)

// DefaultSecurityLevel tags every access log written by the biometric logger.
const DefaultSecurityLevel = "Level_1"

// AccessLogRecord is an append-only audit entry for one upload.
type AccessLogRecord struct {
	AccessID      string       `json:"access_id" dynamodbav:"AccessID" db:"access_id"`
	Timestamp     string       `json:"timestamp" dynamodbav:"Timestamp" db:"timestamp"` // unix seconds
	Status        AccessStatus `json:"status" dynamodbav:"Status" db:"status"`
	FileName      string       `json:"file_name" dynamodbav:"FileName" db:"file_name"`
	SecurityLevel string       `json:"security_level" dynamodbav:"SecurityLevel" db:"security_level"`
}

// VerdictFor maps a detected face count to an access verdict. Presence of any
// face is enough; there is no identity check.
func VerdictFor(faces int) AccessStatus {
	if faces > 0 {
		return AccessAuthorized
	}
	return AccessUnauthorized
}
