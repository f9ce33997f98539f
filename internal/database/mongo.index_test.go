package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type indexedModel struct {
	ID        string `bson:"_id"`
	Email     string `bson:"email" index:"unique"`
	Phone     string `bson:"phone,omitempty" index:"unique,sparse"`
	Role      string `bson:"role" index:"single"`
	CreatedAt int64  `bson:"createdAt" index:"single,order:-1"`
	Token     string `bson:"token" index:"ttl:3600"`
	TenantID  string `bson:"tenant_id" index:"compound:tenant_status_idx"`
	Status    string `bson:"status" index:"compound:tenant_status_idx"`
	Ignored   string `bson:"-" index:"single"`
}

func TestIndexSpecs(t *testing.T) {
	specs, err := IndexSpecs(&indexedModel{})
	require.NoError(t, err)

	byName := map[string]IndexSpec{}
	for _, s := range specs {
		byName[s.Name] = s
	}

	require.Contains(t, byName, "email_unique")
	assert.True(t, *byName["email_unique"].Options.Unique)
	assert.Nil(t, byName["email_unique"].Options.Sparse)

	require.Contains(t, byName, "phone_unique")
	assert.True(t, *byName["phone_unique"].Options.Sparse)

	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, byName["createdAt_single"].Keys)
	assert.Equal(t, int32(3600), *byName["token_ttl"].Options.ExpireAfterSeconds)
	assert.Equal(t, bson.D{{Key: "tenant_id", Value: 1}, {Key: "status", Value: 1}}, byName["tenant_status_idx"].Keys)
	assert.NotContains(t, byName, "-_single")
	assert.Len(t, specs, 6)
}

func TestIndexSpecsInvalidTTL(t *testing.T) {
	type bad struct {
		At string `bson:"at" index:"ttl:soon"`
	}
	_, err := IndexSpecs(bad{})
	assert.Error(t, err)
}

func TestSameIndex(t *testing.T) {
	specs, err := IndexSpecs(&indexedModel{})
	require.NoError(t, err)

	var email IndexSpec
	for _, s := range specs {
		if s.Name == "email_unique" {
			email = s
		}
	}

	assert.True(t, sameIndex(bson.M{"key": bson.M{"email": int32(1)}, "unique": true}, email))
	assert.False(t, sameIndex(bson.M{"key": bson.M{"email": int32(1)}}, email))
	assert.False(t, sameIndex(bson.M{"key": bson.M{"mail": int32(1)}, "unique": true}, email))
}
