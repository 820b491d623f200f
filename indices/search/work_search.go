package search

import (
	"encoding/json"
	"fmt"
	"strings"
	"voltflow/client/es"
	"voltflow/domain"
	"voltflow/indices"
	"voltflow/session"
)

var (
	SearchWorksFunc = SearchWorks
)

// SearchWorks runs the work query against the search index instead of the
// database. Client users only ever see works of their own client.
func SearchWorks(q domain.WorkQuery, s *session.Session) ([]domain.Work, error) {
	filters := make([]es.H, 0, 5)

	if !s.Perms.HasStaffRole() {
		clientId := s.Perms.ClientID()
		if clientId == 0 {
			return []domain.Work{}, nil
		}
		filters = append(filters, es.H{"term": es.H{"clientId": clientId}})
	} else if q.ClientID != 0 {
		filters = append(filters, es.H{"term": es.H{"clientId": q.ClientID}})
	}

	if q.Name != "" {
		filters = append(filters, es.H{"match": es.H{"name": es.H{"query": q.Name, "operator": "AND"}}})
	}
	if q.WorkType != "" {
		filters = append(filters, es.H{"term": es.H{"workType": q.WorkType}})
	}

	if q.ArchiveState == domain.StatusOn {
		filters = append(filters, es.H{"exists": es.H{"field": "archiveTime"}})
	} else if q.ArchiveState == domain.StatusAll {
		// do nothing
	} else {
		filters = append(filters, es.H{"bool": es.H{"must_not": es.H{"exists": es.H{"field": "archiveTime"}}}})
	}

	sorts := make([]es.H, 0, 1)
	sorts = append(sorts, es.H{"createTime": es.H{"order": "desc"}})

	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.WorkIndexName, es.H{"size": 10000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	works := make([]domain.Work, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		w := domain.Work{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&w); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		works = append(works, w)
	}
	return works, nil
}
