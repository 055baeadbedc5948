package article

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
)

// Ref is a public article id that clients may send as a number or a string.
type Ref int64

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("article_id %q is not an integer", b)
	}
	*r = Ref(n)
	return nil
}

// MissingArticleIDs returns the ids in refs that have no live article.
func (s *Service) MissingArticleIDs(ctx context.Context, refs []int64) ([]int64, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	var found []int64
	err := s.db.WithContext(ctx).Model(&models.ArticleModel{}).
		Where("article_id IN ? AND is_deleted = ?", refs, false).
		Pluck("article_id", &found).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool, len(found))
	for _, id := range found {
		seen[id] = true
	}
	var missing []int64
	for _, id := range refs {
		if !seen[id] {
			missing = append(missing, id)
			seen[id] = true
		}
	}
	return missing, nil
}

// Cards exposes the presenter used for listings.
func (s *Service) Cards() CardPresenter { return s.cards }
