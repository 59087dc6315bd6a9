package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongoUpdateSetsAndUnsets(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	ct := "text/plain"
	body := []byte("x")
	u := mongoUpdate(Patch{ContentType: &ct, Content: &body}, now)
	require.Equal(t, bson.M{"$set": bson.M{"updatedAt": now, "contentType": "text/plain", "content": []byte("x")}}, u)

	empty := []byte{}
	key := ""
	u = mongoUpdate(Patch{Content: &empty, ContentKey: &key}, now)
	require.Equal(t, bson.M{"updatedAt": now}, u["$set"])
	require.Equal(t, bson.M{"content": "", "contentKey": ""}, u["$unset"])
}
