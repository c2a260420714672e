package memory

import (
	"fmt"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
)

func errDuplicateRequest(requestID string) error {
	return fmt.Errorf("sale request_id %q: %w", requestID, domain.ErrDuplicate)
}
