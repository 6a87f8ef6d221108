package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTPARepo(t *testing.T) (*TPAConfigRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return NewTPAConfigRepository(client, testLogger()), mr
}

func seed(t *testing.T, mr *miniredis.Miniredis, key, value string) {
	t.Helper()
	require.NoError(t, mr.Set(key, value))
}

func TestListMappingsBuildsNameIndex(t *testing.T) {
	repo, mr := newTestTPARepo(t)

	seed(t, mr, "clinic:tpa:c1:1", `{"ins_code":"TPA001","insurance_name":"Neuron","ins_payer":"Neuron LLC"}`)
	seed(t, mr, "clinic:tpa:c1:2", `{"ins_code":"INS012","tpa_name":" NextCare "}`)
	seed(t, mr, "clinic:tpa:c1:index", `["1","2"]`)
	seed(t, mr, "clinic:tpa:other:1", `{"ins_code":"TPA999","insurance_name":"Elsewhere"}`)

	mapping, err := repo.ListMappings(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"NEURON":     "TPA001",
		"NEURON LLC": "TPA001",
		"NEXTCARE":   "INS012",
	}, mapping)
}

func TestListMappingsInsuranceNameWins(t *testing.T) {
	repo, mr := newTestTPARepo(t)

	seed(t, mr, "clinic:tpa:c1:1", `{"ins_code":"TPA001","insurance_name":"Neuron"}`)
	seed(t, mr, "clinic:tpa:c1:2", `{"ins_code":"TPA002","ins_payer":"Neuron"}`)

	mapping, err := repo.ListMappings(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "TPA001", mapping["NEURON"])
}

func TestListMappingsSkipsBadEntries(t *testing.T) {
	repo, mr := newTestTPARepo(t)

	seed(t, mr, "clinic:tpa:c1:1", `not json`)
	seed(t, mr, "clinic:tpa:c1:2", `{"insurance_name":"No Code"}`)
	seed(t, mr, "clinic:tpa:c1:3", `{"ins_code":"TPA003","insurance_name":"Valid"}`)

	mapping, err := repo.ListMappings(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"VALID": "TPA003"}, mapping)
}

func TestListMappingsEmptyClinic(t *testing.T) {
	repo, _ := newTestTPARepo(t)

	mapping, err := repo.ListMappings(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, mapping)
}
