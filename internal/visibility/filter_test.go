package visibility

import (
	"testing"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/models"
	"donationhub/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func posting(id string, status models.PostingStatus, age int) *models.Posting {
	return &models.Posting{
		ID:           id,
		DonorID:      "donor-1",
		DonationType: models.DonationTypeFood,
		Status:       status,
		CreatedAt:    base.Add(time.Duration(age) * time.Hour),
	}
}

func ids(ps []*models.Posting) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter_Donor(t *testing.T) {
	mine := posting("a", models.PostingStatusInTransit, 1)
	done := posting("b", models.PostingStatusDelivered, 2)
	other := posting("c", models.PostingStatusAvailable, 3)
	other.DonorID = "donor-2"

	viewer := Viewer{ID: "donor-1", Role: models.RoleDonor}
	all := []*models.Posting{mine, done, other}

	active, err := Filter(all, viewer, TabActive)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(active))

	history, err := Filter(all, viewer, TabHistory)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(history))
}

func TestFilter_VolunteerTabs(t *testing.T) {
	open := posting("open", models.PostingStatusAvailable, 1)
	claimed := posting("claimed", models.PostingStatusRequested, 2)
	claimed.OrphanageID = "req-1"
	clothes := posting("clothes", models.PostingStatusAvailable, 3)
	clothes.DonationType = models.DonationTypeClothes
	task := posting("task", models.PostingStatusInTransit, 4)
	task.VolunteerID = "vol-1"
	othersTask := posting("others", models.PostingStatusPickupVerificationPending, 5)
	othersTask.VolunteerID = "vol-2"
	finished := posting("finished", models.PostingStatusDelivered, 6)
	finished.VolunteerID = "vol-1"

	all := []*models.Posting{open, claimed, clothes, task, othersTask, finished}
	viewer := Viewer{ID: "vol-1", Role: models.RoleVolunteer, TypeFilter: models.DonationFilterAll}

	got, err := Filter(all, viewer, TabOpportunities)
	require.NoError(t, err)
	assert.Equal(t, []string{"clothes", "claimed", "open"}, ids(got))

	viewer.TypeFilter = models.DonationFilterFood
	got, err = Filter(all, viewer, TabOpportunities)
	require.NoError(t, err)
	assert.Equal(t, []string{"claimed", "open"}, ids(got))

	got, err = Filter(all, viewer, TabMyTasks)
	require.NoError(t, err)
	assert.Equal(t, []string{"task"}, ids(got))

	got, err = Filter(all, viewer, TabHistory)
	require.NoError(t, err)
	assert.Equal(t, []string{"finished"}, ids(got))
}

func TestFilter_Requester(t *testing.T) {
	open := posting("open", models.PostingStatusAvailable, 1)
	mine := posting("mine", models.PostingStatusRequested, 2)
	mine.OrphanageID = "req-1"
	delivered := posting("delivered", models.PostingStatusDelivered, 3)
	delivered.OrphanageID = "req-1"
	theirs := posting("theirs", models.PostingStatusRequested, 4)
	theirs.OrphanageID = "req-2"

	all := []*models.Posting{open, mine, delivered, theirs}
	viewer := Viewer{ID: "req-1", Role: models.RoleRequester}

	got, err := Filter(all, viewer, TabBrowse)
	require.NoError(t, err)
	assert.Equal(t, []string{"open"}, ids(got))

	got, err = Filter(all, viewer, TabMyRequests)
	require.NoError(t, err)
	assert.Equal(t, []string{"delivered", "mine"}, ids(got))
}

func TestFilter_RadiusBoundary(t *testing.T) {
	here := models.Coordinate{Lat: 0, Lng: 0}
	exact := utils.CalculateDistance(0, 0, 0, 0.09)

	onEdge := posting("edge", models.PostingStatusAvailable, 1)
	onEdge.Location = models.NewAddressAt(0, 0.09)
	farther := posting("far", models.PostingStatusAvailable, 2)
	farther.Location = models.NewAddressAt(0, 0.0901)
	noCoords := posting("nocoords", models.PostingStatusAvailable, 3)

	viewer := Viewer{ID: "vol-1", Role: models.RoleVolunteer, Location: &here, SearchRadius: exact}

	got, err := Filter([]*models.Posting{onEdge, farther, noCoords}, viewer, TabOpportunities)
	require.NoError(t, err)
	assert.Equal(t, []string{"nocoords", "edge"}, ids(got))
}

func TestFilter_DefaultRadiusWhenUnset(t *testing.T) {
	here := models.Coordinate{Lat: 12.97, Lng: 77.59}
	near := posting("near", models.PostingStatusAvailable, 1)
	near.Location = models.NewAddressAt(12.98, 77.60)
	far := posting("far", models.PostingStatusAvailable, 2)
	far.Location = models.NewAddressAt(13.30, 77.59)

	viewer := Viewer{ID: "req-1", Role: models.RoleRequester, Location: &here}
	got, err := Filter([]*models.Posting{near, far}, viewer, TabBrowse)
	require.NoError(t, err)
	assert.Equal(t, []string{"near"}, ids(got))
}

func TestFilter_UnknownTab(t *testing.T) {
	_, err := Filter(nil, Viewer{ID: "d", Role: models.RoleDonor}, TabBrowse)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = Filter(nil, Viewer{ID: "x", Role: "ADMIN"}, TabActive)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestViewerFor_UsesAddressWhenNoCurrentLocation(t *testing.T) {
	addr := models.NewAddressAt(1, 2)
	u := models.NewUser("u1", "Val", "", models.RoleVolunteer, base)
	u.Address = &addr

	v := ViewerFor(u, nil)
	require.NotNil(t, v.Location)
	assert.Equal(t, models.Coordinate{Lat: 1, Lng: 2}, *v.Location)
	assert.Equal(t, models.DefaultSearchRadius, v.SearchRadius)

	current := &models.Coordinate{Lat: 5, Lng: 6}
	assert.Equal(t, current, ViewerFor(u, current).Location)
}

func TestTabsFor(t *testing.T) {
	assert.Equal(t, []Tab{TabActive, TabHistory}, TabsFor(models.RoleDonor))
	assert.Equal(t, TabOpportunities, DefaultTab(models.RoleVolunteer))
	assert.Equal(t, TabBrowse, DefaultTab(models.RoleRequester))
}
