package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/linkclean/internal/sanitize"
	"github.com/law-makers/linkclean/pkg/models"
)

type memStore struct {
	list    sanitize.BlockList
	loadErr error
	saveErr error
	saves   int
	clears  int
}

func (m *memStore) Load() (sanitize.BlockList, error) {
	if m.loadErr != nil {
		return sanitize.BlockList{}, m.loadErr
	}
	return m.list.Clone(), nil
}

func (m *memStore) Save(list sanitize.BlockList) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.list = list.Clone()
	return nil
}

func (m *memStore) Clear() error {
	m.clears++
	m.list = sanitize.BlockList{}
	return nil
}

type stubFetcher struct {
	release chan struct{}
	urls    chan string
}

func (f *stubFetcher) Fetch(ctx context.Context, rawURL string) models.PreviewResult {
	if f.urls != nil {
		f.urls <- rawURL
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
		}
	}
	return models.PreviewResult{URL: rawURL, Record: &models.PreviewRecord{Title: rawURL}}
}

func TestNew_FallsBackToDefaultsOnLoadError(t *testing.T) {
	s := New(&memStore{loadErr: errors.New("corrupt")}, nil)
	assert.Len(t, s.Params(), len(sanitize.DefaultParams()))
}

func TestUpdate_UsesStoredList(t *testing.T) {
	s := New(&memStore{list: sanitize.NewBlockList("session")}, nil)

	res := s.Update("https://example.com/?session=1&utm_source=x")
	assert.Equal(t, "https://example.com/?utm_source=x", res.CleanedURL)
	assert.Equal(t, []string{"utm_source"}, res.DiscoveredKeys)
}

func TestUpdate_EmptyInput(t *testing.T) {
	s := New(nil, nil)
	res := s.Update("   ")
	assert.Equal(t, models.SanitizeResult{}, res)
}

func TestAddParams_PersistsAndResanitizes(t *testing.T) {
	st := &memStore{list: sanitize.NewBlockList("utm_source")}
	s := New(st, nil)
	s.Update("https://example.com/?utm_source=a&Campaign_ID=7&keep=1")

	res, added, err := s.AddParams(" Campaign_ID ", "utm_source", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, sanitize.ErrDuplicateParam)
	assert.ErrorIs(t, err, sanitize.ErrEmptyParam)
	assert.Equal(t, []string{"campaign_id"}, added)

	assert.Equal(t, "https://example.com/?keep=1", res.CleanedURL)
	assert.Equal(t, 1, st.saves)
	assert.True(t, st.list.Contains("campaign_id"))
}

func TestRemoveParams(t *testing.T) {
	st := &memStore{list: sanitize.NewBlockList("utm_source", "ref")}
	s := New(st, nil)
	s.Update("https://example.com/?ref=x")

	res, removed, err := s.RemoveParams("REF", "missing")
	require.NoError(t, err)
	assert.Equal(t, []string{"ref"}, removed)
	assert.Equal(t, "https://example.com/?ref=x", res.CleanedURL)
	assert.False(t, res.WasModified)
	assert.Equal(t, []string{"utm_source"}, st.list.Names())

	_, removed, err = s.RemoveParams("nothing")
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, 1, st.saves)
}

func TestResetParams(t *testing.T) {
	st := &memStore{list: sanitize.NewBlockList("custom")}
	s := New(st, nil)

	_, err := s.ResetParams()
	require.NoError(t, err)
	assert.Equal(t, len(sanitize.DefaultParams()), st.list.Len())
	assert.False(t, st.list.Contains("custom"))
}

func TestClearParams(t *testing.T) {
	st := &memStore{list: sanitize.NewBlockList("custom")}
	s := New(st, nil)
	s.Update("https://example.com/?custom=1&utm_source=x")

	res, err := s.ClearParams()
	require.NoError(t, err)
	assert.Equal(t, 1, st.clears)
	assert.Zero(t, st.saves)
	assert.Equal(t, "https://example.com/?custom=1", res.CleanedURL)
	assert.Equal(t, len(sanitize.DefaultParams()), s.BlockList().Len())
}

func TestSaveFailureKeepsInMemoryChange(t *testing.T) {
	st := &memStore{saveErr: errors.New("disk full")}
	s := New(st, nil)

	_, added, err := s.AddParams("newparam")
	require.Error(t, err)
	assert.Equal(t, []string{"newparam"}, added)
	assert.True(t, s.BlockList().Contains("newparam"))
}

func TestPreview_SkipsWhenNotClean(t *testing.T) {
	s := New(nil, &stubFetcher{})
	s.Update("mailto:a@b.c")

	_, ok, err := s.Preview(context.Background())
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestPreview_ReturnsResult(t *testing.T) {
	s := New(nil, &stubFetcher{})
	s.Update("example.com/page?utm_source=x")

	res, ok, err := s.Preview(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/page", res.URL)
}

func TestPreview_StaleResultDiscarded(t *testing.T) {
	fetcher := &stubFetcher{release: make(chan struct{}), urls: make(chan string, 2)}
	s := New(nil, fetcher)
	s.Update("https://first.example.com")

	type outcome struct {
		ok  bool
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		_, ok, err := s.Preview(context.Background())
		done <- outcome{ok, err}
	}()

	select {
	case <-fetcher.urls:
	case <-time.After(time.Second):
		t.Fatal("fetch never started")
	}

	s.Update("https://second.example.com")

	select {
	case got := <-done:
		assert.False(t, got.ok)
		assert.ErrorIs(t, got.err, ErrStale)
	case <-time.After(time.Second):
		t.Fatal("superseded preview was not cancelled")
	}
}

func TestPreview_BlockListChangeDiscardsInFlight(t *testing.T) {
	tests := []struct {
		name   string
		change func(s *Session)
		want   string
	}{
		{
			name:   "add",
			change: func(s *Session) { s.AddParams("campaign") },
			want:   "https://example.com/?keep=1",
		},
		{
			name:   "remove",
			change: func(s *Session) { s.RemoveParams("utm_source") },
			want:   "https://example.com/?keep=1&campaign=x&utm_source=y",
		},
		{
			name:   "reset",
			change: func(s *Session) { s.ResetParams() },
			want:   "https://example.com/?keep=1&campaign=x",
		},
		{
			name:   "clear",
			change: func(s *Session) { s.ClearParams() },
			want:   "https://example.com/?keep=1&campaign=x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &stubFetcher{release: make(chan struct{}), urls: make(chan string, 2)}
			s := New(&memStore{list: sanitize.NewBlockList("utm_source", "custom")}, fetcher)
			s.Update("https://example.com/?keep=1&campaign=x&utm_source=y")

			type outcome struct {
				res models.PreviewResult
				ok  bool
				err error
			}
			done := make(chan outcome, 1)
			go func() {
				res, ok, err := s.Preview(context.Background())
				done <- outcome{res, ok, err}
			}()

			select {
			case got := <-fetcher.urls:
				assert.Equal(t, "https://example.com/?keep=1&campaign=x", got)
			case <-time.After(time.Second):
				t.Fatal("fetch never started")
			}

			tt.change(s)
			close(fetcher.release)
			assert.Equal(t, tt.want, s.Result().CleanedURL)

			select {
			case got := <-done:
				assert.False(t, got.ok)
				assert.ErrorIs(t, got.err, ErrStale)
				assert.Nil(t, got.res.Record)
			case <-time.After(time.Second):
				t.Fatal("preview did not return")
			}
		})
	}
}
