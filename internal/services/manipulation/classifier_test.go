package manipulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asakaida/datastore/internal/entities"
	"github.com/asakaida/datastore/internal/testutil"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(testutil.BlogSchema())

	tests := []struct {
		parentType string
		relation   string
		kind       entities.RelationKind
	}{
		{"comment", "post", entities.SingularOwning},
		{"author", "profile", entities.SingularOwned},
		{"post", "comments", entities.PluralOwned},
		{"post", "tags", entities.PluralJoin},
		{"image", "imageable", entities.SingularOwning},
		{"video", "tags", entities.PluralJoin},
	}

	for _, tt := range tests {
		t.Run("正常系: "+tt.parentType+"."+tt.relation, func(t *testing.T) {
			rel, err := c.Classify(entities.LoadedRecord(tt.parentType, "1", nil), tt.relation)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, rel.Kind)
		})
	}
}

func TestClassifier_UnknownRelation(t *testing.T) {
	c := NewClassifier(testutil.BlogSchema())

	_, err := c.Classify(entities.LoadedRecord("post", "1", nil), "likes")
	assert.ErrorIs(t, err, ErrUnknownRelation)

	_, err = c.Classify(entities.LoadedRecord("unknown", "1", nil), "posts")
	assert.ErrorIs(t, err, ErrUnknownRelation)

	_, err = NewClassifier(nil).Classify(entities.LoadedRecord("post", "1", nil), "tags")
	assert.ErrorIs(t, err, ErrUnknownRelation)

	_, err = c.Classify(nil, "tags")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
