package courtauction

// Request and response shapes for the courtauction.go.kr internal JSON API.
// The endpoint expects every field of the search block to be present, most
// of them as empty strings; the populated values below pin the search to
// apartment listings (usage codes 20000/20100/20104) sold at court auction.

const (
	searchPath = "/pgj/pgjsearch/searchControllerMain.on"
	imagePath  = "/pgj/pgj15B/selectAuctnCsSrchRslt.on"

	bidDivisionCode     = "000331"
	realEstateCode      = "00031R"
	searchConditionCode = "0004601"
	usageLargeCode      = "20000" // 건물
	usageMediumCode     = "20100" // 주거용건물
	usageSmallCode      = "20104" // 아파트
	programID           = "PGJ151F01"
	defaultCourtCode    = "B000210"
	defaultPageSize     = 50
	userAgent           = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	refererURL          = "https://www.courtauction.go.kr/"
)

type pageInfo struct {
	PageNo          int    `json:"pageNo"`
	PageSize        int    `json:"pageSize"`
	BfPageNo        string `json:"bfPageNo"`
	StartRowNo      string `json:"startRowNo"`
	TotalCnt        string `json:"totalCnt"`
	TotalYn         string `json:"totalYn"`
	GroupTotalCount string `json:"groupTotalCount"`
}

// searchInfo is the dma_srchGdsDtlSrchInfo block. The API rejects requests
// with absent keys, so the full key set is carried and unused members are
// serialised as empty strings — including the movable-property and vehicle
// criteria this crawler never populates.
type searchInfo struct {
	RletDspslSpcCondCd      string `json:"rletDspslSpcCondCd"`
	BidDvsCd                string `json:"bidDvsCd"`
	MvprpRletDvsCd          string `json:"mvprpRletDvsCd"`
	CortAuctnSrchCondCd     string `json:"cortAuctnSrchCondCd"`
	RprsAdongSdCd           string `json:"rprsAdongSdCd"`
	RprsAdongSggCd          string `json:"rprsAdongSggCd"`
	RprsAdongEmdCd          string `json:"rprsAdongEmdCd"`
	RdnmSdCd                string `json:"rdnmSdCd"`
	RdnmSggCd               string `json:"rdnmSggCd"`
	RdnmNo                  string `json:"rdnmNo"`
	MvprpDspslPlcAdongSdCd  string `json:"mvprpDspslPlcAdongSdCd"`
	MvprpDspslPlcAdongSggCd string `json:"mvprpDspslPlcAdongSggCd"`
	MvprpDspslPlcAdongEmdCd string `json:"mvprpDspslPlcAdongEmdCd"`
	RdDspslPlcAdongSdCd     string `json:"rdDspslPlcAdongSdCd"`
	RdDspslPlcAdongSggCd    string `json:"rdDspslPlcAdongSggCd"`
	RdDspslPlcAdongEmdCd    string `json:"rdDspslPlcAdongEmdCd"`
	CortOfcCd               string `json:"cortOfcCd"`
	JdbnCd                  string `json:"jdbnCd"`
	ExecrOfcDvsCd           string `json:"execrOfcDvsCd"`
	LclDspslGdsLstUsgCd     string `json:"lclDspslGdsLstUsgCd"`
	MclDspslGdsLstUsgCd     string `json:"mclDspslGdsLstUsgCd"`
	SclDspslGdsLstUsgCd     string `json:"sclDspslGdsLstUsgCd"`
	CortAuctnMbrsID         string `json:"cortAuctnMbrsId"`
	AeeEvlAmtMin            string `json:"aeeEvlAmtMin"`
	AeeEvlAmtMax            string `json:"aeeEvlAmtMax"`
	LwsDspslPrcRateMin      string `json:"lwsDspslPrcRateMin"`
	LwsDspslPrcRateMax      string `json:"lwsDspslPrcRateMax"`
	FlbdNcntMin             string `json:"flbdNcntMin"`
	FlbdNcntMax             string `json:"flbdNcntMax"`
	ObjctArDtsMin           string `json:"objctArDtsMin"`
	ObjctArDtsMax           string `json:"objctArDtsMax"`
	MvprpArtclKndCd         string `json:"mvprpArtclKndCd"`
	MvprpArtclNm            string `json:"mvprpArtclNm"`
	MvprpAtchmPlcTypCd      string `json:"mvprpAtchmPlcTypCd"`
	NotifyLoc               string `json:"notifyLoc"`
	LafjOrderBy             string `json:"lafjOrderBy"`
	PgmID                   string `json:"pgmId"`
	CsNo                    string `json:"csNo"`
	CortStDvs               string `json:"cortStDvs"`
	StatNum                 int    `json:"statNum"`
	BidBgngYmd              string `json:"bidBgngYmd"`
	BidEndYmd               string `json:"bidEndYmd"`
	DspslDxdyYmd            string `json:"dspslDxdyYmd"`
	FstDspslHm              string `json:"fstDspslHm"`
	ScndDspslHm             string `json:"scndDspslHm"`
	ThrdDspslHm             string `json:"thrdDspslHm"`
	FothDspslHm             string `json:"fothDspslHm"`
	DspslPlcNm              string `json:"dspslPlcNm"`
	LwsDspslPrcMin          string `json:"lwsDspslPrcMin"`
	LwsDspslPrcMax          string `json:"lwsDspslPrcMax"`
	GrbxTypCd               string `json:"grbxTypCd"`
	GdsVendNm               string `json:"gdsVendNm"`
	FuelKndCd               string `json:"fuelKndCd"`
	CarMdyrMax              string `json:"carMdyrMax"`
	CarMdyrMin              string `json:"carMdyrMin"`
	CarMdlNm                string `json:"carMdlNm"`
}

type searchRequest struct {
	PageInfo   pageInfo   `json:"dma_pageInfo"`
	SearchInfo searchInfo `json:"dma_srchGdsDtlSrchInfo"`
}

// SearchResult is one raw row of dlt_srchResult. Every field is served as
// a string, including counts, prices and dates.
type SearchResult struct {
	CaseID             string `json:"srnSaNo"`            // 사건번호
	CourtCode          string `json:"boCd"`               // 담당법원코드
	CourtName          string `json:"jiwonNm"`            // 담당법원명
	Category           string `json:"dspslUsgNm"`         // 용도
	Address            string `json:"printSt"`            // 소재지
	BuildingDetail     string `json:"pjbBuldList"`        // 건물 내역(면적 포함 자유 텍스트)
	EstimatedPrice     string `json:"gamevalAmt"`         // 감정평가액
	MinimumPrice       string `json:"notifyMinmaePrice1"` // 최저매각가격
	Remarks            string `json:"mulBigo"`            // 물건 비고
	FailedBidCount     string `json:"yuchalCnt"`          // 유찰 횟수
	AuctionDateCompact string `json:"maeGiil"`            // 매각기일 YYYYMMDD
}

type searchResponse struct {
	Data struct {
		PageInfo struct {
			TotalCnt string `json:"totalCnt"`
		} `json:"dma_pageInfo"`
		Results []SearchResult `json:"dlt_srchResult"`
	} `json:"data"`
}

type imageSearchInfo struct {
	searchInfo
	SideDvsCd string `json:"sideDvsCd"`
	MenuNm    string `json:"menuNm"`
}

type imageRequest struct {
	Search struct {
		CsNo        string          `json:"csNo"`
		CortOfcCd   string          `json:"cortOfcCd"`
		DspslGdsSeq string          `json:"dspslGdsSeq"`
		PgmID       string          `json:"pgmId"`
		SrchInfo    imageSearchInfo `json:"srchInfo"`
	} `json:"dma_srchGdsDtlSrch"`
}

// ImageAsset is one entry of csPicLst: a base64-encoded picture attached
// to a case, ordered by page sequence.
type ImageAsset struct {
	PageSeq string `json:"pageSeq"`
	PicFile string `json:"picFile"` // base64 JPEG
	CaseNo  string `json:"csNo"`
	PicSeq  string `json:"cortAuctnPicSeq"`
}

type imageResponse struct {
	Data struct {
		Result struct {
			Pictures []ImageAsset `json:"csPicLst"`
		} `json:"dma_result"`
	} `json:"data"`
}
