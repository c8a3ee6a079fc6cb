package contacts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellomail/internal/cache"
	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/contact"
	"github.com/dropDatabas3/hellomail/internal/importer"
	"github.com/dropDatabas3/hellomail/internal/jwt"
	"github.com/dropDatabas3/hellomail/internal/store/memory"
)

func strp(s string) *string { return &s }

type fixture struct {
	st      *memory.Store
	signer  *jwt.Signer
	svc     Services
	website *repository.Website
	other   *repository.Website
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	u, err := st.Users.Create(ctx, repository.CreateUserInput{Email: "owner@x.test"})
	require.NoError(t, err)
	w, err := st.Websites.Create(ctx, repository.CreateWebsiteInput{UserID: u.ID, CompanyName: "Acme"})
	require.NoError(t, err)
	o, err := st.Websites.Create(ctx, repository.CreateWebsiteInput{UserID: u.ID, CompanyName: "Other"})
	require.NoError(t, err)

	signer := jwt.NewSigner("test-secret-0123456789abcdef", "hellomail", time.Hour)
	svc := NewServices(Deps{
		Contacts: st.Contacts,
		Labels:   st.Labels,
		Tokens:   signer,
		Cache:    cache.NewMemory("t:", time.Minute),
	})
	return &fixture{st: st, signer: signer, svc: svc, website: w, other: o}
}

func TestCreateValidatesAndNormalizes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Contacts.Create(ctx, f.website.ID, dto.Request{FirstName: strp("Ana")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Contacts.Create(ctx, f.website.ID, dto.Request{Email: strp("nope")})
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "email", ie.Field)

	_, err = f.svc.Contacts.Create(ctx, f.website.ID, dto.Request{Email: strp("a@x.test"), Gender: strp("robot")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	c, err := f.svc.Contacts.Create(ctx, f.website.ID, dto.Request{Email: strp(" Ana@X.test "), FirstName: strp("Ana"), Gender: strp("Female")})
	require.NoError(t, err)
	assert.Equal(t, "ana@x.test", c.Email)
	assert.Equal(t, "female", c.Gender)

	_, err = f.svc.Contacts.Create(ctx, f.website.ID, dto.Request{Email: strp("ANA@x.test")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	// el mismo email en otro website es válido
	_, err = f.svc.Contacts.Create(ctx, f.other.ID, dto.Request{Email: strp("ana@x.test")})
	assert.NoError(t, err)
}

func TestLabelMustBelongToWebsite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	foreign, err := f.st.Labels.Create(ctx, f.other.ID, repository.LabelInput{Name: "vip", Color: "#000"})
	require.NoError(t, err)

	_, err = f.svc.Contacts.Create(ctx, f.website.ID, dto.Request{Email: strp("a@x.test"), LabelID: &foreign.ID})
	assert.ErrorIs(t, err, ErrLabelNotFound)
}

func TestUpdateMergesPresentFields(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l, err := f.st.Labels.Create(ctx, f.website.ID, repository.LabelInput{Name: "vip", Color: "#000"})
	require.NoError(t, err)
	c, err := f.svc.Contacts.Create(ctx, f.website.ID, dto.Request{Email: strp("a@x.test"), FirstName: strp("Ana"), City: strp("Rosario"), LabelID: &l.ID})
	require.NoError(t, err)

	up, err := f.svc.Contacts.Update(ctx, f.website.ID, c.ContactID, dto.Request{City: strp("Córdoba")})
	require.NoError(t, err)
	assert.Equal(t, "Ana", up.FirstName)
	assert.Equal(t, "Córdoba", up.City)
	require.NotNil(t, up.LabelID)

	up, err = f.svc.Contacts.Update(ctx, f.website.ID, c.ContactID, dto.Request{LabelID: strp("")})
	require.NoError(t, err)
	assert.Nil(t, up.LabelID)

	_, err = f.svc.Contacts.Update(ctx, f.other.ID, c.ContactID, dto.Request{City: strp("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListClampsLimitAndFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for _, e := range []string{"a@x.test", "b@x.test", "c@x.test"} {
		_, err := f.svc.Contacts.Create(ctx, f.website.ID, dto.Request{Email: strp(e), Country: strp("AR")})
		require.NoError(t, err)
	}
	_, err := f.svc.Contacts.Create(ctx, f.website.ID, dto.Request{Email: strp("d@x.test"), Country: strp("UY")})
	require.NoError(t, err)

	out, err := f.svc.Contacts.List(ctx, f.website.ID, repository.ContactFilter{Country: "ar", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
	assert.Len(t, out.Items, 2)

	out, err = f.svc.Contacts.List(ctx, f.website.ID, repository.ContactFilter{Limit: 10000})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Total)
}

func TestFiltersCacheInvalidatedOnWrite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Contacts.Create(ctx, f.website.ID, dto.Request{Email: strp("a@x.test"), Country: strp("AR")})
	require.NoError(t, err)

	v, err := f.svc.Contacts.Filters(ctx, f.website.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"AR"}, v.Countries)

	_, err = f.svc.Contacts.Create(ctx, f.website.ID, dto.Request{Email: strp("b@x.test"), Country: strp("UY"), Tag: strp("promo")})
	require.NoError(t, err)
	v, err = f.svc.Contacts.Filters(ctx, f.website.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"AR", "UY"}, v.Countries)
	assert.Equal(t, []string{"promo"}, v.Tags)
}

func TestImportSkipsExistingAndInFileDuplicates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Contacts.Create(ctx, f.website.ID, dto.Request{Email: strp("old@x.test")})
	require.NoError(t, err)

	csvData := "first,email\n" +
		"Ana,ana@x.test\n" +
		"Old,OLD@x.test\n" +
		"Ana again,ana@x.test\n" +
		"Bob,bob@x.test\n"
	res, err := f.svc.Import.Import(ctx, f.website.ID, ImportRequest{
		File:      strings.NewReader(csvData),
		Mapping:   importer.Mapping{"column_1": "first_name", "column_2": "email"},
		HasHeader: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "duplicate email")
	assert.Equal(t, "line 3: email already exists", res.Errors[1])

	list, err := f.svc.Contacts.List(ctx, f.website.ID, repository.ContactFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total)
}

// partialContacts escribe la primera fila y después falla, como un store sin transacción.
type partialContacts struct {
	repository.ContactRepository
}

func (p partialContacts) BulkInsert(ctx context.Context, websiteID string, in []repository.ContactInput) (int, error) {
	n, _ := p.ContactRepository.BulkInsert(ctx, websiteID, in[:1])
	return n, errors.New("connection reset")
}

func TestImportFailureStillInvalidatesFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	svc := NewServices(Deps{
		Contacts: partialContacts{f.st.Contacts},
		Labels:   f.st.Labels,
		Tokens:   f.signer,
		Cache:    cache.NewMemory("t:", time.Minute),
	})

	v, err := svc.Contacts.Filters(ctx, f.website.ID)
	require.NoError(t, err)
	assert.Empty(t, v.Countries)

	_, err = svc.Import.Import(ctx, f.website.ID, ImportRequest{
		File:    strings.NewReader("Ana,ana@x.test,AR\nBob,bob@x.test,UY\n"),
		Mapping: importer.Mapping{"column_1": "first_name", "column_2": "email", "column_3": "country"},
	})
	require.Error(t, err)

	v, err = svc.Contacts.Filters(ctx, f.website.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"AR"}, v.Countries)
}

func TestImportRejectsBadMappingAndEmptyFile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Import.Import(ctx, f.website.ID, ImportRequest{
		File:    strings.NewReader("a,b\n"),
		Mapping: importer.Mapping{"column_2": "email"},
	})
	assert.ErrorIs(t, err, importer.ErrInvalidMapping)

	_, err = f.svc.Import.Import(ctx, f.website.ID, ImportRequest{
		File:    strings.NewReader(""),
		Mapping: importer.Mapping{"column_1": "first_name", "column_2": "email"},
	})
	assert.ErrorIs(t, err, importer.ErrInvalidCSV)
}

func TestImportFields(t *testing.T) {
	f := setup(t)
	fields := f.svc.Import.Fields().Fields
	require.Len(t, fields, len(importer.Fields))
	assert.Equal(t, "first_name", fields[1].Name)
	assert.True(t, fields[1].Required)
}

func TestUnsubscribe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c, err := f.svc.Contacts.Create(ctx, f.website.ID, dto.Request{Email: strp("a@x.test")})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Unsubscribe.Unsubscribe(ctx, ""), ErrTokenInvalid)
	assert.ErrorIs(t, f.svc.Unsubscribe.Unsubscribe(ctx, "garbage"), ErrTokenInvalid)

	tok, err := f.signer.IssueUnsubscribe(c.ContactID, f.website.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Unsubscribe.Unsubscribe(ctx, tok))
	require.NoError(t, f.svc.Unsubscribe.Unsubscribe(ctx, tok))

	got, err := f.svc.Contacts.Get(ctx, f.website.ID, c.ContactID)
	require.NoError(t, err)
	assert.True(t, got.Unsubscribed)

	require.NoError(t, f.svc.Contacts.Delete(ctx, f.website.ID, c.ContactID))
	assert.NoError(t, f.svc.Unsubscribe.Unsubscribe(ctx, tok), "contacto borrado no es error")
}
