package forecast

// APIResponse is the 5-day/3-hour forecast endpoint payload.
type APIResponse struct {
	List []struct {
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity *int    `json:"humidity"`
			Pressure *int    `json:"pressure"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Pop   float64 `json:"pop"`
		DtTxt string  `json:"dt_txt"`
	} `json:"list"`
}
