// Package hierarchy maps branches (Sucursal) to their zone (Zona) and region
// (Región).
//
// The branch table ships embedded as sucursales.yaml and can be replaced by an
// external file of the same shape:
//
//	regions:
//	  - name: "Núcleo Uno"
//	    zones:
//	      - name: "Conexión Naucalpan"
//	        branches: ["Satélite 1", "Satélite 2"]
//
// Branch names match exactly. A branch listed twice keeps its first entry and
// the duplicate is reported as a Conflict.
package hierarchy
