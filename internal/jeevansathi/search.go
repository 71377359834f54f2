package jeevansathi

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
)

const (
	SearchPath = "/api/v1/search/perform"
)

// SearchParams are the upstream search query parameters.
type SearchParams struct {
	// jsparam is the upstream query key; mapstructure keys come from config.
	Gender        string   `jsparam:"gender" mapstructure:"gender"`
	AgeMin        int      `jsparam:"lage" mapstructure:"age-min"`
	AgeMax        int      `jsparam:"hage" mapstructure:"age-max"`
	Religions     []string `jsparam:"religion" mapstructure:"religions"`
	Castes        []string `jsparam:"caste" mapstructure:"castes"`
	MotherTongues []string `jsparam:"mtongue" mapstructure:"mother-tongues"`
	Cities        []string `jsparam:"city_res" mapstructure:"cities"`
	Education     []string `jsparam:"edu_level_new" mapstructure:"education"`
	SearchType    string   `jsparam:"searchBasedParam" mapstructure:"search-type"`
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	value := reflect.ValueOf(params).Elem()

	for _, field := range reflect.VisibleFields(value.Type()) {
		key := field.Tag.Get("jsparam")
		if key == "" {
			continue
		}

		switch v := value.FieldByIndex(field.Index).Interface().(type) {
		case []string:
			for _, item := range v {
				q.Add(key, item)
			}
		case []int:
			for _, item := range v {
				q.Add(key, strconv.Itoa(item))
			}
		default:
			s := fmt.Sprintf("%v", v)
			if s != "" && s != "0" {
				q.Set(key, s)
			}
		}
	}

	return q
}
