package endpoint

const (
	// UniProtAccession is the source endpoint of the canonical column of an idmapping dump
	UniProtAccession = "UniProtKB_AC-ID"
	// UniProtKB is the target endpoint that maps back to UniProt accessions
	UniProtKB = "UniProtKB"
)

// sharedNames are the databases accepted on both sides of a mapping
var sharedNames = []string{
	"UniProtKB-Swiss-Prot", "UniParc", "UniRef50", "UniRef90", "UniRef100", "Gene_Name", "CRC64",
	"CCDS", "EMBL-GenBank-DDBJ", "EMBL-GenBank-DDBJ_CDS", "GI_number", "PIR", "RefSeq_Nucleotide",
	"RefSeq_Protein", "PDB", "BioGRID", "ComplexPortal", "DIP", "STRING", "ChEMBL", "DrugBank",
	"GuidetoPHARMACOLOGY", "SwissLipids", "Allergome", "CLAE", "ESTHER", "MEROPS", "PeroxiBase",
	"REBASE", "TCDB", "GlyConnect", "BioMuta", "DMDM", "World-2DPAGE", "CPTAC", "ProteomicsDB",
	"DNASU", "Ensembl", "Ensembl_Genomes", "Ensembl_Genomes_Protein", "Ensembl_Genomes_Transcript",
	"Ensembl_Protein", "Ensembl_Transcript", "GeneID", "KEGG", "PATRIC", "UCSC", "WBParaSite",
	"WBParaSite_Transcript-Protein", "ArachnoServer", "Araport", "CGD", "ConoServer", "dictyBase",
	"EchoBASE", "euHCVdb", "FlyBase", "GeneCards", "GeneReviews", "HGNC", "LegioList", "Leproma",
	"MaizeGDB", "MGI", "MIM", "neXtProt", "Orphanet", "PharmGKB", "PomBase", "PseudoCAP", "RGD",
	"SGD", "TubercuList", "VEuPathDB", "VGNC", "WormBase", "WormBase_Protein", "WormBase_Transcript",
	"Xenbase", "ZFIN", "eggNOG", "GeneTree", "HOGENOM", "OMA", "OpenTargets", "OrthoDB", "TreeFam",
	"BioCyc", "PlantReactome", "Reactome", "UniPathway", "ChiTaRS", "GeneWiki", "GenomeRNAi",
	"PHI-base", "CollecTF", "DisProt", "IDEAL",
}

var sourceAliases = map[string]string{
	"Gene_ORFName":      "Gene_Name",
	"EMBL-CDS":          "EMBL-GenBank-DDBJ_CDS",
	"EMBL":              "EMBL-GenBank-DDBJ",
	"EnsemblGenome_PRO": "Ensembl_Genomes_Protein",
	"EnsemblGenome_TRS": "Ensembl_Genomes_Transcript",
	"EnsemblGenome":     "Ensembl_Genomes",
	"Ensembl_PRO":       "Ensembl_Protein",
	"Ensembl_TRS":       "Ensembl_Transcript",
	"GI":                "GI_number",
	"RefSeq":            "RefSeq_Protein",
	"RefSeq_NT":         "RefSeq_Nucleotide",
}

var targetAliases = map[string]string{
	"EMBL-CDS":          "EMBL-GenBank-DDBJ_CDS",
	"EMBL":              "EMBL-GenBank-DDBJ",
	"EnsemblGenome_PRO": "Ensembl_Genomes_Protein",
	"EnsemblGenome_TRS": "Ensembl_Genomes_Transcript",
	"EnsemblGenome":     "Ensembl_Genomes",
	"Ensembl_PRO":       "Ensembl_Protein",
	"Ensembl_TRS":       "Ensembl_Transcript",
	"GI":                "GI_number",
	"RefSeq":            "RefSeq_Protein",
	"RefSeq_NT":         "RefSeq_Nucleotide",
	"UniProtKB-ID":      UniProtKB,
}

// Sources builds the catalog of databases identifiers can be mapped from.
// Each call returns a fresh catalog.
func Sources() *Catalog {
	names := append([]string{UniProtAccession}, sharedNames...)
	c, err := NewCatalog(names, sourceAliases)
	if err != nil {
		panic(err)
	}
	return c
}

// Targets builds the catalog of databases identifiers can be mapped to
func Targets() *Catalog {
	names := append([]string{UniProtKB}, sharedNames...)
	c, err := NewCatalog(names, targetAliases)
	if err != nil {
		panic(err)
	}
	return c
}

// Catalogs bundles the source and target catalogs used by one process
type Catalogs struct {
	Sources *Catalog
	Targets *Catalog
}

// Default returns both built-in catalogs
func Default() Catalogs {
	return Catalogs{Sources: Sources(), Targets: Targets()}
}

// Pair parses a from/to pair of names
func (c Catalogs) Pair(from, to string) (Endpoint, Endpoint, error) {
	src, err := c.Sources.Parse(from)
	if err != nil {
		return Endpoint{}, Endpoint{}, err
	}
	dst, err := c.Targets.Parse(to)
	if err != nil {
		return Endpoint{}, Endpoint{}, err
	}
	return src, dst, nil
}
