package recordingsrv

import (
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/iam/auth"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/recording"
)

const uploadTokenType = "recording_upload"

// UploadTokenService issues tokens scoped to a single upload on top of the
// generic access token service
type UploadTokenService struct {
	tokens auth.TokenService
}

func NewUploadTokenService(tokens auth.TokenService) *UploadTokenService {
	return &UploadTokenService{tokens: tokens}
}

// UploadClaims is what a valid upload token proves
type UploadClaims struct {
	UploadID  kernel.UploadID
	SessionID kernel.SessionID
	ExpiresAt time.Time
}

func (s *UploadTokenService) Issue(uploadID kernel.UploadID, sessionID kernel.SessionID, ttl time.Duration) (string, error) {
	claims := map[string]any{
		"type":       uploadTokenType,
		"upload_id":  uploadID.String(),
		"session_id": sessionID.String(),
	}

	token, err := s.tokens.GenerateAccessToken(kernel.UserID("upload:"+uploadID.String()), []string{auth.ScopeRecordingsUpload}, claims, ttl)
	if err != nil {
		return "", errx.Wrap(err, "failed to generate upload token", errx.TypeInternal)
	}
	return token, nil
}

// Validate accepts only an unexpired upload token minted for uploadID
func (s *UploadTokenService) Validate(token string, uploadID kernel.UploadID) (*UploadClaims, error) {
	if token == "" {
		return nil, recording.ErrInvalidUploadToken().WithDetail("reason", "missing token")
	}

	claims, err := s.tokens.ValidateAccessToken(token)
	if err != nil {
		return nil, recording.ErrInvalidUploadToken().WithCause(err)
	}
	if !auth.HasScope(claims.Scopes, auth.ScopeRecordingsUpload) {
		return nil, recording.ErrInvalidUploadToken().WithDetail("reason", "missing scope")
	}
	if t, _ := claims.Extra["type"].(string); t != uploadTokenType {
		return nil, recording.ErrInvalidUploadToken().WithDetail("reason", "not an upload token")
	}
	if id, _ := claims.Extra["upload_id"].(string); id != uploadID.String() {
		return nil, recording.ErrInvalidUploadToken().WithDetail("reason", "token issued for another upload")
	}

	sessionID, _ := claims.Extra["session_id"].(string)
	return &UploadClaims{
		UploadID:  uploadID,
		SessionID: kernel.SessionID(sessionID),
		ExpiresAt: claims.ExpiresAt,
	}, nil
}
