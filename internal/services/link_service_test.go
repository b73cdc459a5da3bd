package services

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvd/internal/structures"
	"tvd/internal/testutil"
)

func linkConf() *structures.Config {
	return &structures.Config{
		Persistence: structures.Persistence{LinksFilePath: "links.json"},
	}
}

func TestLinkService_AddPersists(t *testing.T) {
	fm := testutil.NewMockFileManager()
	ls := NewLinkService(linkConf(), fm, &testutil.MockLogger{})

	require.NoError(t, ls.Add(Link{Url: "https://example.org", ChatId: 1, AddedAt: 10}))

	var stored []Link
	require.NoError(t, json.Unmarshal(fm.Files["links.json"], &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "https://example.org", stored[0].Url)
}

func TestLinkService_LoadsExistingFile(t *testing.T) {
	fm := testutil.NewMockFileManager()
	blob, _ := json.Marshal([]Link{{Url: "https://a", ChatId: 2, AddedAt: 20}})
	fm.Files["links.json"] = blob

	ls := NewLinkService(linkConf(), fm, &testutil.MockLogger{})

	list := ls.List()
	require.Len(t, list, 1)
	assert.Equal(t, "https://a", list[0].Url)
}

func TestLinkService_MalformedFileStartsEmpty(t *testing.T) {
	fm := testutil.NewMockFileManager()
	fm.Files["links.json"] = []byte("{not json")

	ls := NewLinkService(linkConf(), fm, &testutil.MockLogger{})

	assert.Empty(t, ls.List())
}

func TestLinkService_ListIsDetached(t *testing.T) {
	ls := NewLinkService(linkConf(), testutil.NewMockFileManager(), &testutil.MockLogger{})
	require.NoError(t, ls.Add(Link{Url: "https://a"}))

	list := ls.List()
	list[0].Url = "mutated"

	assert.Equal(t, "https://a", ls.List()[0].Url)
}
