package websites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/website"
	"github.com/dropDatabas3/hellomail/internal/store/memory"
)

type invalidations []string

func (i *invalidations) Invalidate(_ context.Context, id string) { *i = append(*i, id) }

func strp(s string) *string { return &s }

func TestWebsitesCRUD(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	owner, err := st.Users.Create(ctx, repository.CreateUserInput{Email: "o@x.test"})
	require.NoError(t, err)
	other, err := st.Users.Create(ctx, repository.CreateUserInput{Email: "p@x.test"})
	require.NoError(t, err)

	inv := &invalidations{}
	svc := NewService(Deps{Websites: st.Websites, Ownership: inv})

	_, err = svc.Create(ctx, owner.ID, dto.CreateRequest{CompanyName: "Acme"})
	assert.ErrorIs(t, err, ErrMissingFields)

	w, err := svc.Create(ctx, owner.ID, dto.CreateRequest{CompanyName: " Acme ", Domain: "HTTPS://Acme.IO/blog", Field: "retail"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", w.CompanyName)
	assert.Equal(t, "acme.io", w.Domain)

	_, err = svc.Get(ctx, other.ID, w.WebsiteID)
	assert.ErrorIs(t, err, ErrNotFound)

	up, err := svc.Update(ctx, owner.ID, w.WebsiteID, dto.UpdateRequest{Domain: strp("http://shop.acme.io/")})
	require.NoError(t, err)
	assert.Equal(t, "shop.acme.io", up.Domain)
	assert.Equal(t, "Acme", up.CompanyName)

	_, err = svc.Update(ctx, owner.ID, w.WebsiteID, dto.UpdateRequest{CompanyName: strp("  ")})
	assert.ErrorIs(t, err, ErrMissingFields)

	list, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, svc.Delete(ctx, other.ID, w.WebsiteID), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, owner.ID, w.WebsiteID))
	assert.Equal(t, []string{w.WebsiteID}, []string(*inv))
}
