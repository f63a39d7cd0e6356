package seek

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

var testParameters = SearchParameters{Where: "Hobart TAS 7000", Page: 1, PageSize: 22, SortMode: "ListedDate"}

func searchMock() (*http.Response, error) {
	file, err := os.ReadFile("testdata/search.json")

	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewBuffer(file)),
	}, err
}

func Test_SeekClient_Search_ShouldBeSuccessful(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == "https://www.seek.com.au/api/jobsearch/v5/search?"+
			"include=seodata%2Cjoracrosslink%2CgptTargeting&locale=en-AU&page=1&pageSize=22&"+
			"siteKey=AU-Main&sortmode=ListedDate&sourcesystem=houston&where=Hobart+TAS+7000" &&
			req.Header.Get("seek-request-country") == "AU"
	})).Return(searchMock())

	client := NewClient(testParameters)
	client.SetHTTPClient(mockClient)

	listings, err := client.Search(context.Background())
	require.NoError(t, err)
	mockClient.AssertExpectations(t)

	require.Len(t, listings, 3)

	first := listings[0]
	assert.Equal("80001", first.ID)
	assert.Equal("Acme Tasmania", first.Company)
	assert.Equal("A1", first.CompanyID)
	assert.Equal("Hobart TAS", first.Location)
	assert.Equal("Contract/Temp & Full time", first.WorkType)
	assert.Equal("Hybrid", first.WorkArrangement)
	assert.Equal("Information & Communication Technology", first.Classification)
	assert.Equal("Developers/Programmers", first.Subclassification)
	assert.Equal([]string{"Remote friendly", "Great team"}, first.BulletPoints)
	assert.Equal([]string{"Expiring soon"}, first.Tags)
	assert.Equal(time.Date(2026, 10, 19, 1, 30, 0, 0, time.UTC), first.PostedAt)
	assert.Equal("2h ago", first.PostedAtDisplay)
	assert.Equal("https://logos.example.com/acme.png", first.LogoURL)
	assert.True(first.IsFeatured)
	assert.Equal("https://www.seek.com.au/job/80001", first.URL())

	second := listings[1]
	assert.Equal("Cafe", second.Company)
	assert.Equal("Not Specified", second.Location)
	assert.Equal("Not Specified", second.WorkType)
	assert.Equal("On-site, Flexible", second.WorkArrangement)
	assert.Equal("Not Specified", second.Classification)
	assert.True(second.PostedAt.IsZero())

	third := listings[2]
	assert.Equal("Unknown Company", third.Company)
	assert.Equal("Not Specified", third.WorkArrangement)
}

func Test_SeekClient_Fetch_WhenStatusIsNotOk_ShouldReturnEmpty(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: http.StatusForbidden,
		Body:       io.NopCloser(bytes.NewBufferString("blocked")),
	}, nil)

	client := NewClient(testParameters)
	client.SetHTTPClient(mockClient)

	_, err := client.Search(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Empty(t, client.Fetch(context.Background()))
}

func Test_SeekClient_Fetch_WhenBodyIsMalformed_ShouldReturnEmpty(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString("{not json")),
	}, nil)

	client := NewClient(testParameters)
	client.SetHTTPClient(mockClient)

	assert.Empty(t, client.Fetch(context.Background()))
}

func Test_SearchParameters_Validate(t *testing.T) {
	assert.NoError(t, testParameters.Validate())
	assert.Error(t, SearchParameters{}.Validate())
}
